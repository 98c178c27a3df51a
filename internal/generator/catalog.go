package generator

// CategorySeed is one catalog category with its candidate product names.
type CategorySeed struct {
	Name         string
	Description  string
	ProductNames []string
}

// Catalog holds the fixed inputs the generator samples from.
type Catalog struct {
	Categories   []CategorySeed
	LastNames    []string
	FirstNames   []string
	Cities       []string
	EmailDomains []string
}

var defaultCategories = []CategorySeed{
	{"Electronics", "Electronic devices and gadgets", []string{
		"Smartphone", "Laptop", "Headphones", "Tablet", "Smartwatch",
		"Bluetooth Speaker", "Wireless Charger", "USB Cable", "External Hard Drive", "Wireless Keyboard",
	}},
	{"Clothing", "Clothing for men, women and children", []string{
		"T-shirt", "Jeans", "Dress", "Jacket", "Sweater",
		"Shoes", "Socks", "Tie", "Scarf", "Shorts",
	}},
	{"Food", "Food and beverages", []string{
		"Mineral Water", "Fruit Juice", "Cereal", "Pasta", "Rice",
		"Chocolate", "Biscuits", "Coffee", "Tea", "Milk",
	}},
	{"Home", "Furniture and decoration", []string{
		"Sofa", "Table", "Chair", "Lamp", "Rug",
		"Curtains", "Cushion", "Tableware", "Saucepan", "Glasses",
	}},
	{"Sports", "Sports and leisure equipment", []string{
		"Football", "Tennis Racket", "Bicycle", "Yoga Mat", "Dumbbells",
		"Sports Bag", "Running Shoes", "Swimsuit", "Swimming Goggles", "Water Bottle",
	}},
	{"Beauty", "Beauty and personal care products", []string{
		"Shampoo", "Shower Gel", "Moisturizer", "Perfume", "Deodorant",
		"Makeup", "Hairbrush", "Razor", "Nail Polish", "Face Mask",
	}},
	{"Garden", "Plants and gardening tools", []string{
		"House Plant", "Lawn Mower", "Shovel", "Rake", "Watering Can",
		"Flower Pot", "Gardening Gloves", "Fertilizer", "Wheelbarrow", "Pruning Shears",
	}},
	{"Books", "Books and magazines", []string{
		"Novel", "Comic Book", "Cookbook", "Travel Guide", "Dictionary",
		"Children's Book", "Biography", "Science Fiction", "Crime Novel", "Fantasy",
	}},
	{"Baby", "Baby products", []string{
		"Diapers", "Baby Bottle", "Stroller", "Crib", "Baby Toy",
		"Pacifier", "Bib", "Bodysuit", "Baby Cream", "Changing Bag",
	}},
	{"Automotive", "Car parts and accessories", []string{
		"Tire", "Battery", "Car Seat", "GPS", "Window Cleaner",
		"Jumper Cables", "Engine Oil", "Antifreeze", "Wiper Blade", "Car Charger",
	}},
}

var defaultLastNames = []string{
	"Martin", "Bernard", "Dubois", "Thomas", "Robert", "Richard", "Petit", "Durand", "Leroy", "Moreau",
	"Simon", "Laurent", "Lefebvre", "Michel", "Garcia", "David", "Bertrand", "Roux", "Vincent", "Fournier",
	"Morel", "Girard", "Andre", "Lefevre", "Mercier", "Dupont", "Lambert", "Bonnet", "Francois", "Martinez",
}

var defaultFirstNames = []string{
	"Jean", "Pierre", "Paul", "Jacques", "Marie", "Anne", "Sophie", "Nathalie", "Thomas", "François",
	"Nicolas", "Christophe", "Patrick", "Michel", "Philippe", "Isabelle", "Sylvie", "Catherine", "Monique", "Valérie",
	"David", "Daniel", "Eric", "Olivier", "Christine", "Sandrine", "Caroline", "Stéphanie", "Alexandre", "Julien",
}

var defaultCities = []string{
	"Paris", "Marseille", "Lyon", "Toulouse", "Nice", "Nantes", "Strasbourg", "Montpellier", "Bordeaux", "Lille",
	"Rennes", "Reims", "Le Havre", "Saint-Étienne", "Toulon", "Grenoble", "Dijon", "Angers", "Nîmes", "Villeurbanne",
}

var defaultEmailDomains = []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com"}

// DefaultCatalog returns the built-in catalog: ten categories of ten
// products each plus the customer name and city pools.
func DefaultCatalog() Catalog {
	categories := make([]CategorySeed, len(defaultCategories))
	for i, c := range defaultCategories {
		c.ProductNames = append([]string(nil), c.ProductNames...)
		categories[i] = c
	}
	return Catalog{
		Categories:   categories,
		LastNames:    append([]string(nil), defaultLastNames...),
		FirstNames:   append([]string(nil), defaultFirstNames...),
		Cities:       append([]string(nil), defaultCities...),
		EmailDomains: append([]string(nil), defaultEmailDomains...),
	}
}
