package types

// Category is one of the four ordinal BMI health-risk labels.
type Category string

const (
	CategoryUnderweight Category = "Underweight"
	CategoryNormal      Category = "Normal weight"
	CategoryOverweight  Category = "Overweight"
	CategoryObese       Category = "Obese"
)

// Categories lists every category in ascending BMI order.
var Categories = []Category{
	CategoryUnderweight,
	CategoryNormal,
	CategoryOverweight,
	CategoryObese,
}

// String implements fmt.Stringer.
func (c Category) String() string { return string(c) }

// Color returns the feedback colour name shown next to a result.
func (c Category) Color() string {
	switch c {
	case CategoryUnderweight:
		return "blue"
	case CategoryNormal:
		return "green"
	case CategoryOverweight:
		return "orange"
	case CategoryObese:
		return "red"
	default:
		return "gray"
	}
}
