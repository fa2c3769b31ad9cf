package assistant

import "strings"

// breedLabels maps stored breed codes to the names used in prompts. Keys are lower-case.
var breedLabels = map[string]string{
	"poodle":             "푸들",
	"toy poodle":         "토이 푸들",
	"maltese":            "말티즈",
	"pomeranian":         "포메라니안",
	"shih tzu":           "시츄",
	"chihuahua":          "치와와",
	"bichon frise":       "비숑 프리제",
	"yorkshire terrier":  "요크셔 테리어",
	"dachshund":          "닥스훈트",
	"welsh corgi":        "웰시 코기",
	"shiba inu":          "시바견",
	"jindo":              "진돗개",
	"golden retriever":   "골든 리트리버",
	"labrador retriever": "래브라도 리트리버",
	"french bulldog":     "프렌치 불독",
	"beagle":             "비글",
	"schnauzer":          "슈나우저",
	"border collie":      "보더 콜리",
	"samoyed":            "사모예드",
	"siberian husky":     "시베리안 허스키",
	"mixed":              "믹스견",
}

// BreedLabel returns the display name for a breed, or the input unchanged when unmapped.
func BreedLabel(category string) string {
	trimmed := strings.TrimSpace(category)
	if label, ok := breedLabels[strings.ToLower(trimmed)]; ok {
		return label
	}
	return trimmed
}
