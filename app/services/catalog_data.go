package services

import "github.com/shashiranjanraj/meatshop/app/models"

const imageDir = "assets/images/"

func kgHalf(kg, half int) []models.Variant {
	return []models.Variant{{Weight: "1 kg", Price: kg}, {Weight: "500 g", Price: half}}
}

var mainCategories = []models.MainCategory{
	{Name: "Chicken", Slug: "chicken", Image: imageDir + "chicken.png", Description: "Fresh farm-raised chicken"},
	{Name: "Country Chicken", Slug: "country-chicken", Image: imageDir + "country_chicken.jpg", Description: "Traditional free-range chicken"},
	{Name: "Japanese Quail", Slug: "japanese-quail", Image: imageDir + "quail.jpg", Description: "Premium quality quail meat"},
	{Name: "Turkey Bird", Slug: "turkey", Image: imageDir + "turkey.jpg", Description: "Fresh turkey meat"},
	{Name: "Goat", Slug: "goat", Image: imageDir + "goat.png", Description: "Premium goat meat cuts"},
}

var products = []models.Product{
	// Chicken
	{ID: "CC001", Name: "Chicken Curry Cut with Skin", Group: "Chicken", Category: "Curry Cut", Image: imageDir + "cws.jpeg",
		Description: "Traditional curry cut pieces with skin, perfect for curries and biryanis", Variants: kgHalf(170, 85)},
	{ID: "CC002", Name: "Chicken Curry Cut without Skin", Group: "Chicken", Category: "Curry Cut", Image: imageDir + "cwos.png",
		Description: "Skinless curry cut pieces, ideal for healthier preparations", Variants: kgHalf(220, 110)},
	{ID: "BL001", Name: "Chicken Boneless Curry Cut", Group: "Chicken", Category: "Boneless", Image: imageDir + "cbbl.webp",
		Description: "Boneless pieces perfect for quick cooking and curries", Variants: kgHalf(350, 175)},
	{ID: "BL002", Name: "Chicken Breast Boneless", Group: "Chicken", Category: "Boneless", Image: imageDir + "cbl.jpg",
		Description: "Premium chicken breast cuts, ideal for grilling and high-protein meals", Variants: kgHalf(350, 175)},
	{ID: "SP001", Name: "Chicken Wings with Skin", Group: "Chicken", Category: "Special Cuts", Image: imageDir + "cw.jpg",
		Description: "Juicy wings perfect for frying or grilling", Variants: []models.Variant{{Weight: "500 g", Price: 100}}},
	{ID: "SP002", Name: "Chicken Lollipop without Skin", Group: "Chicken", Category: "Special Cuts", Image: imageDir + "cl.png",
		Description: "Ready-to-cook lollipops, great for starters", Variants: []models.Variant{{Weight: "500 g", Price: 125}}},
	{ID: "SP003", Name: "Chicken Drumstick with Skin", Group: "Chicken", Category: "Special Cuts", Image: imageDir + "cd.jpg",
		Description: "Juicy drumsticks, perfect for grilling and frying", Variants: []models.Variant{{Weight: "500 g", Price: 125}}},
	{ID: "GR001", Name: "Chicken Grill/Tandoori Pack with Skin", Group: "Chicken", Category: "Grill/Tandoori", Image: imageDir + "t1.jpg",
		Description: "Whole bird with skin, perfect for grilling or tandoori", Variants: []models.Variant{{Weight: "Whole Bird", Price: 220}}},
	{ID: "GR002", Name: "Chicken Grill/Tandoori Pack without Skin", Group: "Chicken", Category: "Grill/Tandoori", Image: imageDir + "t2.jfif",
		Description: "Skinless whole bird for healthier grilling options", Variants: []models.Variant{{Weight: "Whole Bird", Price: 250}}},
	{ID: "OF001", Name: "Chicken Liver", Group: "Chicken", Category: "Offal", Image: imageDir + "cli.jpg",
		Description: "Fresh chicken liver, rich in nutrients", Variants: kgHalf(200, 100)},
	{ID: "OF002", Name: "Chicken Gizzard", Group: "Chicken", Category: "Offal", Image: imageDir + "cg.jpg",
		Description: "Clean chicken gizzard, ready to cook", Variants: kgHalf(200, 100)},
	{ID: "SP004", Name: "Chicken Kothu Curry", Group: "Chicken", Category: "Special Cuts", Image: imageDir + "ck.webp",
		Description: "Special cut pieces for kothu preparations", Variants: kgHalf(350, 175)},
	{ID: "SP005", Name: "Chicken Bone", Group: "Chicken", Category: "Special Cuts", Image: imageDir + "cb.webp",
		Description: "Chicken bones for making stock and soups", Variants: []models.Variant{{Weight: "1 kg", Price: 70}}},

	// Country Chicken
	{ID: "CN001", Name: "Farm Grownup with Skin", Group: "Country Chicken", Category: "Farm Grownup", Image: imageDir + "N1.jpg",
		Description: "Fresh farm-raised country chicken with skin, perfect for traditional recipes", Variants: kgHalf(400, 200)},
	{ID: "CN002", Name: "Farm Grownup without Skin", Group: "Country Chicken", Category: "Farm Grownup", Image: imageDir + "N2.jfif",
		Description: "Skinless farm-raised country chicken, ideal for healthier preparations", Variants: kgHalf(400, 200)},
	{ID: "CN003", Name: "House Grownup Live Bird", Group: "Country Chicken", Category: "House Grownup", Image: imageDir + "N3.jpg",
		Description: "Fresh house-raised live country chicken, traditionally grown for authentic taste", Variants: []models.Variant{{Weight: "1 kg", Price: 600}}},

	// Goat
	{ID: "GT001", Name: "Mutton Curry with bone", Group: "Goat", Category: "Curry Cut", Image: imageDir + "Mcurrywithbone.webp",
		Description: "Fresh goat meat curry cut with bone", Variants: goatVariants(800, 400)},
	{ID: "GT002", Name: "Mutton Curry without bone", Group: "Goat", Category: "Boneless", Image: imageDir + "Mutton Curry without Bone.jpg",
		Description: "Premium boneless goat meat pieces", Variants: goatVariants(950, 475)},
	{ID: "GT003", Name: "Mutton Chops Curry", Group: "Goat", Category: "Special Cuts", Image: imageDir + "Muttonchops.webp",
		Description: "Fresh goat Chops", Variants: goatVariants(900, 450)},
	{ID: "GT004", Name: "Mutton Breast Curry", Group: "Goat", Category: "Special Cuts", Image: imageDir + "Mbreastcurry.webp",
		Description: "Fresh goat breast", Variants: goatVariants(900, 450)},

	// Turkey
	{ID: "TR001", Name: "Turkey Bird Meat", Group: "Turkey Bird", Category: "Whole Bird", Image: imageDir + "turkey.jfif",
		Description: "Premium quality turkey meat, perfect for roasting and special occasions. Available only on Sundays.",
		Variants:    []models.Variant{{Weight: "1 kg", Price: 700}}, Note: "Available only on Sundays"},
}

func goatVariants(kg, half int) []models.Variant {
	return []models.Variant{{Weight: "1 kg", Price: kg}, {Weight: "1/2 kg", Price: half}}
}

var comboPacks = []models.ComboPack{
	{Name: "Gym Protein Pack", Items: []string{"Chicken Breast Boneless"}, Weight: "250g", Price: 100, Image: imageDir + "Gym Pack.jpg"},
	{Name: "Pets Special Pack", Items: []string{"Chicken Bone"}, Weight: "1kg", Price: 70, Image: imageDir + "cb.webp"},
	{Name: "Liver Pack", Items: []string{"Liver Frozen"}, Weight: "1kg", Price: 90, Image: imageDir + "Chicken liver .jpg"},
	{Name: "Leg Pack", Items: []string{"Chicken Leg"}, Weight: "1kg", Price: 50, Image: imageDir + "Chicken leg piece with thigh .webp"},
}
