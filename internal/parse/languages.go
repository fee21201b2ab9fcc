package parse

// EpicLanguages is the controlled vocabulary accepted by the
// stanford_epic_lang target field. Language only ever produces five of these
// from the structured source field; the full set is kept here so the target
// vocabulary stays auditable alongside the mapping.
var EpicLanguages = map[string]string{
	"ALB": "Albanian",
	"AMH": "Amharic",
	"ARA": "Arabic",
	"ARM": "Armenian",
	"ASL": "American Sign Language",
	"BUR": "Burmese",
	"CAN": "Cantonese",
	"CHI": "Shanghainese",
	"CPF": "Creole, French",
	"CRO": "Croatian",
	"DAR": "Dari",
	"ENG": "English",
	"FIJ": "Fijian",
	"FRE": "French",
	"GER": "German",
	"GRE": "Greek",
	"GUJ": "Gujarati",
	"HEB": "Hebrew",
	"HIN": "Hindi",
	"HMN": "Hmong",
	"HUN": "Hungarian",
	"ILO": "Ilocano",
	"IND": "Indonesian",
	"ITA": "Italian",
	"JPN": "Japanese",
	"KHM": "Cambodian, Mon-Khmer",
	"KOR": "Korean",
	"LAO": "Laotian",
	"LAV": "Latvian",
	"MDN": "Mandarin",
	"MIA": "Miao",
	"NAV": "Navajo",
	"NSL": "Deaf/Non-Sign Language",
	"OTH": "Other",
	"PER": "Persian",
	"PES": "Farsi",
	"POL": "Polish",
	"POR": "Portuguese",
	"PUN": "Punjabi (Panjabi)",
	"ROM": "Romanian",
	"RUS": "Russian",
	"SCR": "Serbian",
	"SMO": "Samoan",
	"SPA": "Spanish",
	"SWA": "Swahili",
	"TAW": "Taiwanese",
	"TEL": "Telugu",
	"TGL": "Tagalog",
	"THA": "Thai",
	"TON": "Tongan",
	"UKR": "Ukrainian",
	"UNK": "Unknown",
	"URD": "Urdu",
	"VIE": "Vietnamese",
	"YID": "Yiddish",
	"YOR": "Yoruba",
}

// IsEpicLanguage reports whether code is in the target field's controlled
// vocabulary.
func IsEpicLanguage(code string) bool {
	_, ok := EpicLanguages[code]
	return ok
}
