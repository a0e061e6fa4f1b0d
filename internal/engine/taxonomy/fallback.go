package taxonomy

import "github.com/rendis/restfinder/internal/model"

// Fallback returns the built-in taxonomy used whenever the service cannot
// provide one. Every call returns fresh slices.
func Fallback() model.Taxonomy {
	return model.Taxonomy{
		Cities: map[string][]string{
			"İstanbul": {
				"Adalar", "Arnavutköy", "Ataşehir", "Avcılar", "Bağcılar", "Bahçelievler",
				"Bakırköy", "Başakşehir", "Bayrampaşa", "Beşiktaş", "Beykoz", "Beylikdüzü",
				"Beyoğlu", "Büyükçekmece", "Çatalca", "Çekmeköy", "Esenler", "Esenyurt",
				"Eyüpsultan", "Fatih", "Gaziosmanpaşa", "Güngören", "Kadıköy", "Kağıthane",
				"Kartal", "Küçükçekmece", "Maltepe", "Pendik", "Sancaktepe", "Sarıyer",
				"Silivri", "Sultanbeyli", "Sultangazi", "Şile", "Şişli", "Tuzla",
				"Ümraniye", "Üsküdar", "Zeytinburnu",
			},
			"Ankara": {
				"Çankaya", "Keçiören", "Mamak", "Altındağ", "Yenimahalle",
				"Etimesgut", "Sincan", "Pursaklar", "Gölbaşı", "Polatlı",
			},
			"İzmir": {
				"Karşıyaka", "Bornova", "Konak", "Çeşme", "Alsancak",
				"Buca", "Bayraklı", "Karabağlar", "Balçova", "Narlıdere",
			},
		},
		FoodCategories: []string{
			"köfteci", "kebapçı", "pideci", "lahmacun", "dönerci", "iskender",
			"mantı", "börekçi", "gözlemeci", "çiğ köfte", "tantuni", "kokoreç",
			"balık", "kahvaltı", "burger", "pizza", "sushi", "italyan",
			"steakhouse", "tatlıcı", "dondurmacı", "kafe", "meyhane",
		},
		Source: model.SourceFallback,
	}
}
