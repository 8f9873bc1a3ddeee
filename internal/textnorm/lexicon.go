package textnorm

import (
	"regexp"
	"strings"
)

// Named pattern sets shared by the normalizer and the ranker. Kept in
// one place so the food lexicon, boilerplate set and unit lexicon stay
// testable instead of accreting per call site.

// foodWords are whole-food/ingredient unigrams. A line containing any
// of these is "food-bearing".
var foodWords = map[string]struct{}{
	"almond": {}, "almonds": {}, "apple": {}, "banana": {}, "barley": {},
	"basil": {}, "beans": {}, "beef": {}, "berries": {}, "blueberry": {},
	"bread": {}, "broccoli": {}, "broth": {}, "butter": {}, "carrots": {},
	"cashews": {}, "cereal": {}, "cheese": {}, "chicken": {}, "chickpeas": {},
	"chips": {}, "chocolate": {}, "cinnamon": {}, "cocoa": {}, "coconut": {},
	"coffee": {}, "corn": {}, "couscous": {}, "crackers": {}, "cranberries": {},
	"eggs": {}, "flour": {}, "fusilli": {}, "garbanzo": {}, "garlic": {},
	"granola": {}, "honey": {}, "hummus": {}, "juice": {}, "kale": {},
	"ketchup": {}, "kidney": {}, "lentils": {}, "lemon": {}, "macaroni": {},
	"mango": {}, "maple": {}, "milk": {}, "miso": {}, "mushrooms": {},
	"mustard": {}, "noodles": {}, "oatmeal": {}, "oats": {}, "oil": {},
	"olive": {}, "olives": {}, "onion": {}, "orange": {}, "pasta": {},
	"peanut": {}, "peas": {}, "penne": {}, "pepper": {}, "peppers": {},
	"pinto": {}, "popcorn": {}, "pretzels": {}, "quinoa": {}, "raisins": {},
	"ramen": {}, "rice": {}, "salmon": {}, "salsa": {}, "salt": {},
	"sauce": {}, "soup": {}, "spaghetti": {}, "spinach": {}, "strawberry": {},
	"sugar": {}, "syrup": {}, "tahini": {}, "tea": {}, "tofu": {},
	"tomato": {}, "tomatoes": {}, "tortilla": {}, "tortillas": {}, "tuna": {},
	"turkey": {}, "vanilla": {}, "vinegar": {}, "walnuts": {}, "wheat": {},
	"yogurt": {},
}

// foodBigrams are known two-word product phrases. Bigram hits carry
// the heaviest positive ranking weight.
var foodBigrams = []string{
	"almond butter", "almond milk", "apple sauce", "basmati rice",
	"black beans", "black pepper", "brown rice", "chicken broth",
	"coconut milk", "coconut oil", "corn tortillas", "dark chocolate",
	"garbanzo beans", "greek yogurt", "green beans", "hot sauce",
	"jasmine rice", "kidney beans", "maple syrup", "oat milk",
	"olive oil", "orange juice", "pasta sauce", "peanut butter",
	"pinto beans", "refried beans", "rolled oats", "sea salt",
	"soy sauce", "tomato paste", "tomato sauce", "vegetable broth",
	"white rice", "whole wheat",
}

// beansPhraseRe is a soft bonus for "<descriptor> beans" style phrases
// that labels favor.
var beansPhraseRe = regexp.MustCompile(`(?i)\b(baked|black|garbanzo|green|kidney|pinto|refried|white)\s+beans\b`)

// brandNames are store and packaged-goods brands that frequently
// dominate label text. A line matching one of these with no food word
// is "brand-only".
var brandNames = []string{
	"365", "amy's", "annie's", "barilla", "bush's", "campbell's",
	"del monte", "goya", "great value", "green giant", "heinz",
	"hunt's", "kirkland", "kirkland signature", "kraft", "newman's own",
	"progresso", "rao's", "trader joe's", "trader joes", "whole foods",
}

// boilerplateRes match label text that must never be returned as the
// product name: nutrition panels, marketing lines, certifications.
var boilerplateRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bserving size\b`),
	regexp.MustCompile(`(?i)\bservings per\b`),
	regexp.MustCompile(`(?i)\bnutrition\b`),
	regexp.MustCompile(`(?i)\bcalories\b`),
	regexp.MustCompile(`(?i)\bdaily value\b`),
	regexp.MustCompile(`(?i)\bmade with\b`),
	regexp.MustCompile(`(?i)\bingredients\b`),
	regexp.MustCompile(`(?i)\bnon-?gmo\b`),
	regexp.MustCompile(`(?i)\busda\b`),
	regexp.MustCompile(`(?i)\bcertified\b`),
	regexp.MustCompile(`(?i)\bkeep refrigerated\b`),
	regexp.MustCompile(`(?i)\bbest (by|before)\b`),
	regexp.MustCompile(`(?i)\bdistributed by\b`),
	regexp.MustCompile(`(?i)\bnet\s*wt\b`),
}

// sizeLineRe matches lines that are purely size/weight text, e.g.
// "NET WT 15.5 OZ" or "32 FL OZ (1 QT)".
var sizeLineRe = regexp.MustCompile(`(?i)^\s*(net\s*wt\.?\s*)?\d+(\.\d+)?\s*(fl\.?\s*)?(oz|lb|lbs|g|gm|kg|ml|l|ct|qt|pt)\b[\s.()\da-z]*$`)

// units are abbreviations that survive the trailing-token trim.
var units = map[string]struct{}{
	"oz": {}, "lb": {}, "ml": {}, "gm": {}, "kg": {},
	"g": {}, "l": {}, "ct": {}, "fl": {}, "qt": {}, "pt": {},
}

// fuzzyVocab is the closed vocabulary the bounded dictionary
// correction pass matches against. Sorted; iteration order is part of
// the determinism contract.
var fuzzyVocab = []string{
	"almond", "beans", "broth", "butter", "cheese", "chicken",
	"chickpeas", "chocolate", "coconut", "crackers", "fusilli",
	"garbanzo", "granola", "hummus", "joe's", "kidney", "kirkland",
	"lentils", "noodles", "oatmeal", "olive", "organic", "pasta",
	"peanut", "penne", "pepper", "pinto", "quinoa", "refried",
	"salsa", "sauce", "spaghetti", "spinach", "tomato", "tomatoes",
	"tortilla", "trader", "vanilla", "vinegar", "yogurt",
}

// capExceptions overrides title-casing for corrected tokens.
var capExceptions = map[string]string{
	"joe's": "Joe's",
}

// HasFoodWord reports whether the line contains at least one food
// lexicon unigram as a whole word.
func HasFoodWord(s string) bool {
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		if _, ok := foodWords[trimTokenPunct(tok)]; ok {
			return true
		}
	}
	return false
}

// FoodWordCount counts whole-word food unigram hits.
func FoodWordCount(s string) int {
	n := 0
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		if _, ok := foodWords[trimTokenPunct(tok)]; ok {
			n++
		}
	}
	return n
}

// FoodBigramCount counts known two-word phrase hits.
func FoodBigramCount(s string) int {
	low := strings.ToLower(s)
	n := 0
	for _, bg := range foodBigrams {
		if strings.Contains(low, bg) {
			n++
		}
	}
	return n
}

// HasBeansPhrase reports a "<descriptor> beans" phrase hit.
func HasBeansPhrase(s string) bool {
	return beansPhraseRe.MatchString(s)
}

// MatchesBrand reports whether the line is a known brand name,
// allowing surrounding punctuation differences.
func MatchesBrand(s string) bool {
	low := squashApostrophes(strings.ToLower(strings.TrimSpace(s)))
	for _, b := range brandNames {
		if low == squashApostrophes(b) {
			return true
		}
	}
	return false
}

// BrandWordCount counts known brand phrase hits anywhere in the line.
func BrandWordCount(s string) int {
	low := squashApostrophes(strings.ToLower(s))
	n := 0
	for _, b := range brandNames {
		if strings.Contains(low, squashApostrophes(b)) {
			n++
		}
	}
	return n
}

// IsBoilerplate reports nutrition/marketing/certification text.
func IsBoilerplate(s string) bool {
	for _, re := range boilerplateRes {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// IsSizeLine reports a line that is purely size/weight text.
func IsSizeLine(s string) bool {
	return sizeLineRe.MatchString(s)
}

// IsUnit reports a recognized unit abbreviation.
func IsUnit(tok string) bool {
	_, ok := units[strings.ToLower(strings.TrimSuffix(tok, "."))]
	return ok
}

func trimTokenPunct(tok string) string {
	return strings.Trim(tok, ".,;:!?()[]")
}

func squashApostrophes(s string) string {
	return strings.ReplaceAll(s, "'", "")
}
