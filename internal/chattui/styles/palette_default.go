package styles

// DefaultTheme is the baseline dark palette.
var DefaultTheme = Theme{
	Name:          "default",
	BorderStyle:   "rounded",
	SenderPalette: append([]string(nil), SenderColorPalette...),
	Base: BaseColors{
		Background: "234",
		Foreground: "252",
		Muted:      "245",
		Accent:     "75",
		Border:     "240",
	},
	Message: MessageColors{
		Own:   "81",
		Other: "147",
	},
	Chrome: ChromeColors{
		Header: "111",
		Footer: "110",
		Notice: "203",
		Prompt: "75",
	},
}
