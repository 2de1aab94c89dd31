package extract

import "regexp"

// The linguistic rule tables below are configuration data, not a complete
// model of Korean morphology.  They are hand-tuned for consumer legal
// scenarios (debt, insurance, lease); extend them via Options rather than
// editing call sites.

// defaultStopwords removes connectives, generic verbs, and question forms
// that carry no legal meaning.
var defaultStopwords = []string{
	"그리고", "그러나", "하지만", "그래서", "그러면", "그런데",
	"하다", "되다", "이다", "있다", "없다", "않다", "알다", "같다", "같은",
	"거", "것", "정도", "부분", "때문", "관련", "대한", "이번", "이번에",
	"우리", "저희", "제가", "나는", "너무", "매우", "정말",
	// interrogatives
	"어떻게", "어디", "언제", "왜", "무엇", "뭐", "몇", "누가", "누구", "어느",
	// question and imperative endings that survive tokenization
	"해야", "해야만", "해야지", "해야하나", "해야되나", "해야되나요",
	"하나요", "하냐", "하니", "하네", "했나요", "했는데", "했습니까",
	"됩니까", "되나요",
}

// trailingSuffixes are formal/verb-ending suffixes stripped from a token
// during normalization, longest match first.
var trailingSuffixes = []string{
	"입니다", "합니다", "했다", "했음", "했어요", "했는데", "했지만",
	"하고", "하며", "이다", "였다", "하나요", "하냐", "하니", "하네",
	"되나요", "됩니까",
}

// particleRunes is the set of single trailing grammatical-particle
// characters stripped after suffix removal.
var particleRunes = map[rune]struct{}{
	'이': {}, '가': {}, '은': {}, '는': {}, '을': {}, '를': {}, '의': {},
	'에': {}, '와': {}, '과': {}, '도': {}, '만': {}, '까': {}, '지': {},
	'조': {}, '차': {}, '부': {}, '터': {},
}

// endingsToStrip are sentence endings removed when deriving meaning units.
// Longest suffix wins; the remainder must keep at least two characters.
var endingsToStrip = []string{
	"였습니다", "였습니다만",
	"이었어요", "이었는데", "이었습니다", "이었습니다만", "이었습",
	"입니다", "입니까", "입니다만",
	"였어요", "했어요", "했는데", "했지만", "했으니", "했으며", "했으나",
	"했으면", "했습니다", "했습니까", "했습",
	"습니다", "습니까", "습니다만",
	"는데", "라서", "이라서", "이라면", "이면", "이면요",
	"네요", "에요", "예요", "어요", "아서", "어서",
	"었어요", "였는데", "겠어요", "겠네요", "겠는데", "겠습",
}

// verbBaseRule recovers a verb's dictionary form from its inflected stems.
type verbBaseRule struct {
	pattern *regexp.Regexp
	base    string
}

// verbBaseRules is an ordered first-match table; every matching rule
// contributes its base form.
var verbBaseRules = []verbBaseRule{
	{regexp.MustCompile("(빌려줬|빌려주었|빌려주었습|빌려줬습)"), "빌려주다"},
	{regexp.MustCompile("(빌렸|빌려|빌리었|빌리었습|빌렸습)"), "빌리다"},
	{regexp.MustCompile("(타였|탔|탔다|탔습|타겠)"), "타다"},
	{regexp.MustCompile("(했|하였|합니다|했습|해요)$"), "하다"},
}

// synonymSeeds maps a selected keyword to related legal vocabulary appended
// when synonym expansion is enabled.
var synonymSeeds = map[string][]string{
	"보험":  {"보험금", "보험료", "보험계약", "공제", "손해보험", "자동차보험"},
	"사고":  {"손해", "배상", "책임", "과실"},
	"임대":  {"임대차", "월세", "전세", "보증금"},
	"전세":  {"보증금", "임차인", "임대인"},
	"계약":  {"계약해지", "해지", "위약금"},
	"임금":  {"급여", "월급", "체불"},
	"해고":  {"부당해고", "정직", "징계"},
	"대여":  {"차용", "금전대여", "채무", "채권", "변제"},
	"빌리다": {"차용", "금전대여", "채무", "채권", "변제", "채무불이행"},
	"돈":   {"금전", "채무", "채권", "변제"},
	"잠수":  {"연락두절", "채무불이행", "기망", "사기"},
}

// searchSynonyms expand a token into alternative remote search terms.
var searchSynonyms = map[string][]string{
	"잠수":      {"연락두절", "연락불능", "행방불명", "도피"},
	"잠수를":     {"연락두절", "연락불능", "행방불명", "도피"},
	"잠수를탔다":   {"연락두절", "연락불능", "행방불명", "도피"},
	"잠수를탔습니다": {"연락두절", "연락불능", "행방불명", "도피"},
	"연락":      {"연락두절", "연락불능"},
	"연락이안된다":  {"연락두절", "연락불능"},
	"친구":      {"지인", "동료"},
	"아는":      {"지인", "친구"},
	"형":       {"지인", "친구"},
	"빌려줬다":    {"차용", "금전대여", "채무"},
	"빌려줬는데":   {"차용", "금전대여", "채무", "변제"},
	"돈":       {"금전", "채무", "채권", "변제"},
	"못받았다":    {"미수", "채권", "채무불이행"},
	"못받았어요":   {"미수", "채권", "채무불이행"},
}

// domainRule triggers a fixed list of related terms when its pattern matches
// anywhere in the token.
type domainRule struct {
	pattern   *regexp.Regexp
	additions []string
}

// domainRules accumulate in order; a token matching several rules collects
// all of their additions.
var domainRules = []domainRule{
	{regexp.MustCompile("(빌리|빌려|대여|꿔|차용)"), []string{"차용", "금전대여", "채무", "변제", "채권", "채무불이행"}},
	{regexp.MustCompile("(돈|금전|채무|채권)"), []string{"금전", "채무", "채권", "변제"}},
	{regexp.MustCompile("(잠수|연락|두절|도피)"), []string{"연락두절", "채무불이행", "기망", "사기"}},
	{regexp.MustCompile("(사기|기망|속임)"), []string{"사기", "기망", "형사", "손해배상"}},
}
