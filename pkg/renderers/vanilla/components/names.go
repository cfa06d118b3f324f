package components

// Canonical component names. Every field kind maps to the component of the
// same name; sensitive fields use NameReveal.
const (
	NameText        = "text"
	NameLongText    = "longtext"
	NameNumber      = "number"
	NameDate        = "date"
	NameYesNo       = "yesno"
	NameMultiChoice = "multichoice"
	NameReveal      = "reveal"
)

// Theme partial keys consulted before the built-in component templates.
const (
	PartialText        = "forms.text"
	PartialLongText    = "forms.longtext"
	PartialNumber      = "forms.number"
	PartialDate        = "forms.date"
	PartialYesNo       = "forms.yesno"
	PartialMultiChoice = "forms.multichoice"
	PartialReveal      = "forms.reveal"
)
