package trademark

// Class is one Nice classification code.
type Class struct {
	Code  int    `json:"code"`
	Title string `json:"title"`
	Kind  string `json:"kind"`
}

const (
	MinClass = 1
	MaxClass = 45
)

var classTitles = [MaxClass]string{
	"Chemicals",
	"Paints and coatings",
	"Cosmetics and cleaning preparations",
	"Industrial oils and fuels",
	"Pharmaceuticals",
	"Common metals",
	"Machines and machine tools",
	"Hand tools",
	"Electrical and scientific apparatus",
	"Medical apparatus",
	"Environmental control apparatus",
	"Vehicles",
	"Firearms and explosives",
	"Jewellery and watches",
	"Musical instruments",
	"Paper goods and printed matter",
	"Rubber and plastic goods",
	"Leather goods",
	"Non-metallic building materials",
	"Furniture",
	"Household utensils",
	"Ropes and textile fibres",
	"Yarns and threads",
	"Fabrics and textiles",
	"Clothing, footwear and headgear",
	"Lace, ribbons and haberdashery",
	"Floor coverings",
	"Games, toys and sporting goods",
	"Meat, dairy and preserved foods",
	"Staple foods, coffee and bakery",
	"Agricultural produce",
	"Beers and non-alcoholic beverages",
	"Alcoholic beverages",
	"Tobacco and smokers' articles",
	"Advertising and business services",
	"Insurance and financial services",
	"Construction and repair",
	"Telecommunications",
	"Transport and storage",
	"Treatment of materials",
	"Education and entertainment",
	"Scientific and technology services",
	"Food and drink services",
	"Medical and beauty services",
	"Legal and security services",
}

// Classes lists every classification code in order.
func Classes() []Class {
	out := make([]Class, 0, MaxClass)
	for i, title := range classTitles {
		code := i + 1
		kind := "goods"
		if code >= 35 {
			kind = "services"
		}
		out = append(out, Class{Code: code, Title: title, Kind: kind})
	}
	return out
}

// ValidClass reports whether code is a known classification.
func ValidClass(code int) bool {
	return code >= MinClass && code <= MaxClass
}
