package server

// Display holds the colors and spacing of the html meal plan table.
type Display struct {
	OrderYesColor      string `json:"order_yes_color"`
	OrderNoColor       string `json:"order_no_color"`
	HeaderBgColor      string `json:"header_bg_color"`
	RowBgColor         string `json:"row_bg_color"`
	TitleBgColor       string `json:"title_bg_color"`
	ChildrenBgColor    string `json:"children_bg_color"`
	CellPadding        string `json:"cell_padding"`
	TableBorderSpacing string `json:"table_border_spacing"`
	PageBgColor        string `json:"page_bg_color"`
	TitleTextColor     string `json:"title_text_color"`
	ChildrenTextColor  string `json:"children_text_color"`
	CellTextColor      string `json:"cell_text_color"`
	OrderYesTextColor  string `json:"order_yes_text_color"`
	OrderNoTextColor   string `json:"order_no_text_color"`
}

// DefaultDisplay is a dark theme with green/red order cells.
func DefaultDisplay() Display {
	return Display{
		OrderYesColor:      "#00ff00",
		OrderNoColor:       "#ff0000",
		HeaderBgColor:      "#f0f0f0",
		RowBgColor:         "#ffffff",
		TitleBgColor:       "#333333",
		ChildrenBgColor:    "#444444",
		CellPadding:        "12px",
		TableBorderSpacing: "10px",
		PageBgColor:        "#000000",
		TitleTextColor:     "#ffffff",
		ChildrenTextColor:  "#ffffff",
		CellTextColor:      "#cccccc",
		OrderYesTextColor:  "#000000",
		OrderNoTextColor:   "#000000",
	}
}
