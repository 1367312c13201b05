package recipe

import "strings"

// 常見食材替代表
var substitutions = []Substitution{
	{"bawang putih", "bawang bombay", "Aroma mirip untuk tumisan dasar"},
	{"minyak goreng", "margarin", "Sebagai lemak untuk menumis/menggoreng"},
	{"gula pasir", "madu", "Pemanis alami"},
	{"susu sapi", "santan", "Memberikan tekstur creamy dan gurih"},
	{"tepung terigu", "tepung maizena", "Sebagai pengental, alternatif gluten-free"},
	{"cabai merah", "bubuk lada hitam", "Memberikan rasa pedas pengganti cabai"},
	{"jeruk nipis", "cuka masak", "Memberikan rasa asam yang segar"},
	{"tomat", "saus tomat", "Pengganti rasa asam-manis dari tomat segar"},
	{"daging ayam", "tahu atau tempe", "Alternatif protein nabati yang populer"},
	{"daging sapi", "jamur tiram atau portobello", "Memberikan tekstur 'daging' sebagai alternatif nabati"},
	{"udang", "ikan dori fillet", "Sama-sama protein dari hasil laut dengan tekstur lembut"},
}

// Substitutions 回傳替代表的副本
func Substitutions() []Substitution {
	return append([]Substitution(nil), substitutions...)
}

// LookupSubstitution 查詢單一食材的替代品
func LookupSubstitution(ingredient string) (Substitution, bool) {
	ingredient = strings.ToLower(strings.TrimSpace(ingredient))
	for _, s := range substitutions {
		if s.Ingredient == ingredient {
			return s, true
		}
	}
	return Substitution{}, false
}
