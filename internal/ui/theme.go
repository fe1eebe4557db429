package ui

import "image/color"

type Theme struct {
	AppBackground   color.RGBA
	TopBar          color.RGBA
	Toolbar         color.RGBA
	Stage           color.RGBA
	CheckerLight    color.RGBA
	CheckerDark     color.RGBA
	Border          color.RGBA
	StatusBar       color.RGBA
	StatusText      color.RGBA
	Accent          color.RGBA
	Selection       color.RGBA
	EditorBox       color.RGBA
	EditorText      color.RGBA
	MenuHeightDp    int
	ToolbarHeightDp int
	StatusHeightDp  int
	StageMarginDp   int
	CheckerCellDp   int
}

func DefaultTheme() Theme {
	return Theme{
		AppBackground:   color.RGBA{0x1E, 0x20, 0x26, 0xFF},
		TopBar:          color.RGBA{0x2A, 0x2D, 0x36, 0xFF},
		Toolbar:         color.RGBA{0x33, 0x37, 0x42, 0xFF},
		Stage:           color.RGBA{0x16, 0x18, 0x1D, 0xFF},
		CheckerLight:    color.RGBA{0x3A, 0x3D, 0x46, 0xFF},
		CheckerDark:     color.RGBA{0x30, 0x33, 0x3B, 0xFF},
		Border:          color.RGBA{0x4A, 0x4F, 0x5C, 0xFF},
		StatusBar:       color.RGBA{0x2A, 0x2D, 0x36, 0xFF},
		StatusText:      color.RGBA{0xD6, 0xDA, 0xE3, 0xFF},
		Accent:          color.RGBA{0xF2, 0xC1, 0x1D, 0xFF},
		Selection:       color.RGBA{0x3B, 0x82, 0xF6, 0xFF},
		EditorBox:       color.RGBA{0x10, 0x12, 0x16, 0xE6},
		EditorText:      color.RGBA{0xFF, 0xFF, 0xFF, 0xFF},
		MenuHeightDp:    34,
		ToolbarHeightDp: 40,
		StatusHeightDp:  26,
		StageMarginDp:   16,
		CheckerCellDp:   12,
	}
}
