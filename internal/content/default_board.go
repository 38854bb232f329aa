package content

// BoardSize is the number of squares in the loop.
const BoardSize = 40

// Utility rent multipliers applied to the last dice sum.
const (
	UtilityMultiplierSingle = 4
	UtilityMultiplierPair   = 10
)

func property(id int, name, nameEn, group string, price, housePrice, rent int, houseRents []int, hotelRent int) Tile {
	return Tile{
		ID: id, Kind: TileProperty, Name: name, NameEn: nameEn, Group: group,
		Price: price, HousePrice: housePrice, Rent: rent,
		RentWithHouse: houseRents, RentWithHotel: hotelRent,
		MortgageValue: price / 2,
	}
}

func station(id int, name, nameEn string) Tile {
	return Tile{
		ID: id, Kind: TileRailroad, Name: name, NameEn: nameEn, Group: "station",
		Price: 200, RentByCount: []int{25, 50, 100, 200}, MortgageValue: 100,
	}
}

// DefaultBoard returns the built-in Egypt-themed board. Prices and rents
// follow the classic layout so house balance stays familiar.
func DefaultBoard() []Tile {
	return []Tile{
		{ID: 0, Kind: TileGo, Name: "انطلق", NameEn: "Go"},
		property(1, "شارع المعز", "Al-Muizz Street", "brown", 60, 50, 2, []int{10, 30, 90, 160}, 250),
		{ID: 2, Kind: TileChest, Name: "صندوق الحظ", NameEn: "Community Chest"},
		property(3, "خان الخليلي", "Khan el-Khalili", "brown", 60, 50, 4, []int{20, 60, 180, 320}, 450),
		{ID: 4, Kind: TileTax, Name: "ضريبة الدخل", NameEn: "Income Tax", TaxAmount: 200},
		station(5, "محطة رمسيس", "Ramses Station"),
		property(6, "أسوان", "Aswan", "lightblue", 100, 50, 6, []int{30, 90, 270, 400}, 550),
		{ID: 7, Kind: TileChance, Name: "فرصة", NameEn: "Chance"},
		property(8, "الأقصر", "Luxor", "lightblue", 100, 50, 6, []int{30, 90, 270, 400}, 550),
		property(9, "إدفو", "Edfu", "lightblue", 120, 50, 8, []int{40, 100, 300, 450}, 600),
		{ID: 10, Kind: TileJail, Name: "السجن", NameEn: "Jail"},
		property(11, "بورسعيد", "Port Said", "pink", 140, 100, 10, []int{50, 150, 450, 625}, 750),
		{ID: 12, Kind: TileUtility, Name: "شركة الكهرباء", NameEn: "Electric Company", Group: "utility", Price: 150, MortgageValue: 75},
		property(13, "الإسماعيلية", "Ismailia", "pink", 140, 100, 10, []int{50, 150, 450, 625}, 750),
		property(14, "السويس", "Suez", "pink", 160, 100, 12, []int{60, 180, 500, 700}, 900),
		station(15, "محطة سيدي جابر", "Sidi Gaber Station"),
		property(16, "طنطا", "Tanta", "orange", 180, 100, 14, []int{70, 200, 550, 750}, 950),
		{ID: 17, Kind: TileChest, Name: "صندوق الحظ", NameEn: "Community Chest"},
		property(18, "المنصورة", "Mansoura", "orange", 180, 100, 14, []int{70, 200, 550, 750}, 950),
		property(19, "الزقازيق", "Zagazig", "orange", 200, 100, 16, []int{80, 220, 600, 800}, 1000),
		{ID: 20, Kind: TileFreeParking, Name: "موقف مجاني", NameEn: "Free Parking"},
		property(21, "المنيا", "Minya", "red", 220, 150, 18, []int{90, 250, 700, 875}, 1050),
		{ID: 22, Kind: TileChance, Name: "فرصة", NameEn: "Chance"},
		property(23, "أسيوط", "Asyut", "red", 220, 150, 18, []int{90, 250, 700, 875}, 1050),
		property(24, "سوهاج", "Sohag", "red", 240, 150, 20, []int{100, 300, 750, 925}, 1100),
		station(25, "محطة الأقصر", "Luxor Station"),
		property(26, "الغردقة", "Hurghada", "yellow", 260, 150, 22, []int{110, 330, 800, 975}, 1150),
		property(27, "شرم الشيخ", "Sharm El-Sheikh", "yellow", 260, 150, 22, []int{110, 330, 800, 975}, 1150),
		{ID: 28, Kind: TileUtility, Name: "شركة المياه", NameEn: "Water Works", Group: "utility", Price: 150, MortgageValue: 75},
		property(29, "دهب", "Dahab", "yellow", 280, 150, 24, []int{120, 360, 850, 1025}, 1200),
		{ID: 30, Kind: TileGoToJail, Name: "اذهب إلى السجن", NameEn: "Go To Jail"},
		property(31, "المعادي", "Maadi", "green", 300, 200, 26, []int{130, 390, 900, 1100}, 1275),
		property(32, "مدينة نصر", "Nasr City", "green", 300, 200, 26, []int{130, 390, 900, 1100}, 1275),
		{ID: 33, Kind: TileChest, Name: "صندوق الحظ", NameEn: "Community Chest"},
		property(34, "مصر الجديدة", "Heliopolis", "green", 320, 200, 28, []int{150, 450, 1000, 1200}, 1400),
		station(35, "محطة أسوان", "Aswan Station"),
		{ID: 36, Kind: TileChance, Name: "فرصة", NameEn: "Chance"},
		property(37, "جاردن سيتي", "Garden City", "blue", 350, 200, 35, []int{175, 500, 1100, 1300}, 1500),
		{ID: 38, Kind: TileTax, Name: "ضريبة الرفاهية", NameEn: "Luxury Tax", TaxAmount: 100},
		property(39, "الزمالك", "Zamalek", "blue", 400, 200, 50, []int{200, 600, 1400, 1700}, 2000),
	}
}
