package models

// Province is one entry of the fixed Indonesian province table.
type Province struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Provinces enumerates the 34 provinces with their 3-letter codes used
// inside protocol codes.
var Provinces = []Province{
	{Code: "ACE", Name: "Aceh"},
	{Code: "SUT", Name: "Sumatera Utara"},
	{Code: "SUB", Name: "Sumatera Barat"},
	{Code: "RIA", Name: "Riau"},
	{Code: "KRI", Name: "Kepulauan Riau"},
	{Code: "JAM", Name: "Jambi"},
	{Code: "SUS", Name: "Sumatera Selatan"},
	{Code: "BBL", Name: "Bangka Belitung"},
	{Code: "BEN", Name: "Bengkulu"},
	{Code: "LAM", Name: "Lampung"},
	{Code: "DKI", Name: "DKI Jakarta"},
	{Code: "JAB", Name: "Jawa Barat"},
	{Code: "JAT", Name: "Jawa Tengah"},
	{Code: "JAI", Name: "Jawa Timur"},
	{Code: "YOG", Name: "DI Yogyakarta"},
	{Code: "BAN", Name: "Banten"},
	{Code: "BAL", Name: "Bali"},
	{Code: "NTB", Name: "Nusa Tenggara Barat"},
	{Code: "NTT", Name: "Nusa Tenggara Timur"},
	{Code: "KAB", Name: "Kalimantan Barat"},
	{Code: "KAT", Name: "Kalimantan Tengah"},
	{Code: "KAI", Name: "Kalimantan Timur"},
	{Code: "KAS", Name: "Kalimantan Selatan"},
	{Code: "KAU", Name: "Kalimantan Utara"},
	{Code: "SLU", Name: "Sulawesi Utara"},
	{Code: "SLT", Name: "Sulawesi Tengah"},
	{Code: "SLS", Name: "Sulawesi Selatan"},
	{Code: "SLG", Name: "Sulawesi Tenggara"},
	{Code: "SLB", Name: "Sulawesi Barat"},
	{Code: "GOR", Name: "Gorontalo"},
	{Code: "MAL", Name: "Maluku"},
	{Code: "MAU", Name: "Maluku Utara"},
	{Code: "PAP", Name: "Papua"},
	{Code: "PAB", Name: "Papua Barat"},
}

// ProvinceByCode resolves a 3-letter province code against the fixed table.
func ProvinceByCode(code string) (Province, bool) {
	for _, p := range Provinces {
		if p.Code == code {
			return p, true
		}
	}
	return Province{}, false
}
