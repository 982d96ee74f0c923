// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package merge joins model predictions loaded from CSV with live
// API-Football fixture data.
//
// # Description
//
// The two sources disagree on team naming ("Man Utd" vs "Manchester
// United", "Beşiktaş" vs "Besiktas JK"), so joining goes through a fuzzy
// matcher backed by a curated alias table plus aggressive normalization
// and tiered similarity scoring. Matched records carry the model
// probabilities, extracted bookmaker odds and the fixture context the
// value analyzer consumes.
package merge

import (
	"regexp"
	"strings"
)

// teamAliases maps a canonical short name to its known variations across
// prediction feeds and the API. Lookup is case-insensitive.
var teamAliases = map[string][]string{
	// English
	"man utd":           {"manchester united", "man united", "manchester utd", "mufc"},
	"man city":          {"manchester city", "manchester c", "mcfc"},
	"spurs":             {"tottenham", "tottenham hotspur", "tottenham hotspurs"},
	"wolves":            {"wolverhampton", "wolverhampton wanderers"},
	"west ham":          {"west ham united", "west ham utd"},
	"newcastle":         {"newcastle united", "newcastle utd"},
	"brighton":          {"brighton & hove albion", "brighton hove albion", "brighton & hove"},
	"nottingham forest": {"nottm forest", "nott'm forest", "nottingham", "forest"},
	"luton":             {"luton town"},
	"sheffield utd":     {"sheffield united"},
	"crystal palace":    {"c palace", "c. palace"},
	"arsenal":           {"arsenal fc"},
	"chelsea":           {"chelsea fc"},
	"liverpool":         {"liverpool fc"},
	"everton":           {"everton fc"},
	"aston villa":       {"villa"},
	"bournemouth":       {"afc bournemouth"},
	"burnley":           {"burnley fc"},
	"fulham":            {"fulham fc"},
	"brentford":         {"brentford fc"},
	"ipswich":           {"ipswich town"},
	"leicester":         {"leicester city"},
	"southampton":       {"southampton fc"},

	// German
	"bayern":        {"bayern munich", "bayern münchen", "fc bayern", "bayern munchen"},
	"dortmund":      {"borussia dortmund", "bvb", "bvb dortmund"},
	"leverkusen":    {"bayer leverkusen", "bayer 04", "bayer 04 leverkusen"},
	"gladbach":      {"borussia mönchengladbach", "borussia m'gladbach", "m'gladbach", "monchengladbach", "borussia monchengladbach"},
	"frankfurt":     {"eintracht frankfurt", "e. frankfurt"},
	"rb leipzig":    {"leipzig", "rasenballsport leipzig"},
	"wolfsburg":     {"vfl wolfsburg"},
	"freiburg":      {"sc freiburg"},
	"hoffenheim":    {"tsg hoffenheim", "tsg 1899 hoffenheim"},
	"mainz":         {"mainz 05", "1. fsv mainz 05"},
	"augsburg":      {"fc augsburg"},
	"bremen":        {"werder bremen", "sv werder bremen"},
	"koln":          {"fc köln", "fc koln", "1. fc koln", "1. fc köln", "cologne"},
	"union berlin":  {"1. fc union berlin", "fc union berlin"},
	"bochum":        {"vfl bochum"},
	"heidenheim":    {"fc heidenheim", "1. fc heidenheim"},
	"st pauli":      {"fc st. pauli", "fc st pauli", "st. pauli"},
	"holstein kiel": {"kiel", "holstein"},

	// Spanish
	"real madrid":    {"r madrid", "r. madrid", "madrid"},
	"barcelona":      {"fc barcelona", "barca", "barça"},
	"atletico":       {"atletico madrid", "atlético madrid", "atl madrid", "atl. madrid", "atletico de madrid"},
	"real betis":     {"betis"},
	"athletic":       {"athletic bilbao", "athletic club"},
	"celta":          {"celta vigo", "rc celta"},
	"real sociedad":  {"r sociedad", "r. sociedad", "sociedad"},
	"villarreal":     {"villarreal cf"},
	"sevilla":        {"sevilla fc"},
	"valencia":       {"valencia cf"},
	"mallorca":       {"rcd mallorca"},
	"osasuna":        {"ca osasuna"},
	"getafe":         {"getafe cf"},
	"rayo vallecano": {"rayo", "vallecano"},
	"alaves":         {"deportivo alaves", "deportivo alavés"},
	"las palmas":     {"ud las palmas"},
	"girona":         {"girona fc"},
	"leganes":        {"cd leganes", "cd leganés"},
	"espanyol":       {"rcd espanyol"},
	"valladolid":     {"real valladolid"},

	// Italian
	"inter":      {"inter milan", "internazionale", "fc internazionale", "inter milano"},
	"ac milan":   {"milan"},
	"juventus":   {"juve"},
	"napoli":     {"ssc napoli"},
	"roma":       {"as roma"},
	"lazio":      {"ss lazio"},
	"atalanta":   {"atalanta bc", "atalanta bergamo"},
	"fiorentina": {"acf fiorentina"},
	"torino":     {"torino fc"},
	"bologna":    {"bologna fc"},
	"verona":     {"hellas verona"},
	"udinese":    {"udinese calcio"},
	"empoli":     {"empoli fc"},
	"lecce":      {"us lecce"},
	"genoa":      {"genoa cfc"},
	"monza":      {"ac monza"},
	"cagliari":   {"cagliari calcio"},
	"parma":      {"parma calcio"},
	"como":       {"como 1907"},
	"venezia":    {"venezia fc"},

	// French
	"psg":         {"paris saint-germain", "paris saint germain", "paris sg", "paris"},
	"marseille":   {"olympique marseille", "om", "olympique de marseille"},
	"lyon":        {"olympique lyonnais", "olympique lyon", "ol"},
	"monaco":      {"as monaco"},
	"lille":       {"losc lille", "losc"},
	"nice":        {"ogc nice"},
	"lens":        {"rc lens"},
	"rennes":      {"stade rennais", "stade rennais fc"},
	"strasbourg":  {"rc strasbourg", "rc strasbourg alsace"},
	"nantes":      {"fc nantes"},
	"reims":       {"stade de reims"},
	"toulouse":    {"toulouse fc"},
	"montpellier": {"montpellier hsc"},
	"brest":       {"stade brestois", "stade brestois 29"},
	"le havre":    {"le havre ac"},
	"auxerre":     {"aj auxerre"},
	"angers":      {"angers sco"},
	"st etienne":  {"as saint-etienne", "as saint etienne", "saint-etienne", "saint etienne"},

	// Dutch
	"ajax":      {"afc ajax"},
	"psv":       {"psv eindhoven"},
	"feyenoord": {"feyenoord rotterdam"},
	"az":        {"az alkmaar"},
	"twente":    {"fc twente"},
	"utrecht":   {"fc utrecht"},

	// Portuguese
	"benfica":  {"sl benfica"},
	"porto":    {"fc porto"},
	"sporting": {"sporting cp", "sporting lisbon"},
	"braga":    {"sc braga", "sporting braga"},

	// Israeli
	"maccabi ta":          {"maccabi tel aviv", "maccabi tel-aviv", "m. tel aviv", "maccabi t.a"},
	"hapoel ta":           {"hapoel tel aviv", "hapoel tel-aviv", "h. tel aviv", "hapoel t.a"},
	"beitar":              {"beitar jerusalem", "beitar j'lem", "beitar j'salem"},
	"maccabi haifa":       {"m haifa", "m. haifa"},
	"hapoel bs":           {"hapoel beer sheva", "hapoel be'er sheva", "h. beer sheva", "hapoel b.s", "hapoel beer-sheva"},
	"hapoel haifa":        {"h. haifa", "h haifa"},
	"bnei sakhnin":        {"b. sakhnin", "sakhnin"},
	"maccabi netanya":     {"m. netanya", "m netanya"},
	"maccabi petah tikva": {"m. petah tikva", "maccabi pt", "m petah tikva", "maccabi p.t"},
	"hapoel jerusalem":    {"h. jerusalem", "hapoel j'lem"},
	"fc ashdod":           {"ashdod", "ms ashdod", "m.s. ashdod", "ironi ashdod"},
	"bnei yehuda":         {"bnei yehuda ta", "bnei yehuda tel aviv"},
	"hapoel kfar saba":    {"h. kfar saba", "kfar saba"},
	"hapoel raanana":      {"h. ra'anana", "raanana", "hapoel ra'anana"},
	"hapoel hadera":       {"h. hadera", "hadera"},
	"ironi kiryat shmona": {"kiryat shmona", "hapoel kiryat shmona"},
	"sektzia nes tziona":  {"nes tziona", "sektzia"},
	"hapoel afula":        {"h. afula", "afula"},
	"hapoel petah tikva":  {"h. petah tikva", "hapoel p.t"},
	"hapoel nof hagalil":  {"nof hagalil", "h. nof hagalil"},

	// Scottish
	"celtic":    {"celtic fc", "celtic glasgow"},
	"rangers":   {"rangers fc", "glasgow rangers"},
	"hearts":    {"heart of midlothian", "hearts fc"},
	"hibernian": {"hibs"},
	"aberdeen":  {"aberdeen fc"},

	// Belgian
	"club brugge": {"club bruges", "brugge"},
	"anderlecht":  {"rsc anderlecht"},
	"genk":        {"krc genk", "racing genk"},
	"standard":    {"standard liege", "standard liège"},
	"gent":        {"kaa gent"},

	// Turkish
	"galatasaray": {"galatasaray sk"},
	"fenerbahce":  {"fenerbahçe", "fenerbahce sk"},
	"besiktas":    {"beşiktaş", "besiktas jk"},
	"trabzonspor": {"trabzon"},

	// Brazilian
	"flamengo":            {"cr flamengo", "flamengo rj"},
	"palmeiras":           {"se palmeiras"},
	"corinthians":         {"sc corinthians", "corinthians sp"},
	"sao paulo":           {"são paulo", "sao paulo fc", "são paulo fc"},
	"santos":              {"santos fc"},
	"fluminense":          {"fluminense fc", "fluminense rj"},
	"gremio":              {"grêmio", "gremio fb"},
	"internacional":       {"sc internacional", "inter rs"},
	"athletico pr":        {"athletico paranaense", "athletico-pr", "cap"},
	"atletico mg":         {"atletico mineiro", "atlético mineiro", "atlético-mg", "atletico-mg"},
	"cruzeiro":            {"cruzeiro mg", "cruzeiro ec"},
	"botafogo":            {"botafogo fr", "botafogo rj"},
	"vasco":               {"vasco da gama", "cr vasco da gama"},
	"ceara":               {"ceará", "ceara sc"},
	"fortaleza":           {"fortaleza ec"},
	"bahia":               {"ec bahia"},
	"sport":               {"sport recife", "sport club recife"},
	"vitoria":             {"ec vitória", "ec vitoria"},
	"coritiba":            {"coritiba fc"},
	"goias":               {"goiás", "goias ec"},
	"cuiaba":              {"cuiabá", "cuiaba ec"},
	"juventude":           {"ec juventude"},
	"america mg":          {"america mineiro", "américa mineiro", "américa-mg"},
	"red bull bragantino": {"bragantino", "rb bragantino"},

	// Mexican
	"america":       {"club america", "club américa"},
	"guadalajara":   {"chivas", "cd guadalajara"},
	"cruz azul":     {"cruz azul fc"},
	"tigres":        {"tigres uanl"},
	"monterrey":     {"cf monterrey"},
	"toluca":        {"deportivo toluca"},
	"pumas":         {"pumas unam", "unam"},
	"santos laguna": {"santos lag"},
	"leon":          {"club leon", "león"},
	"pachuca":       {"cf pachuca"},
	"necaxa":        {"club necaxa"},
	"atlas":         {"atlas fc"},
	"mazatlan":      {"mazatlán", "mazatlan fc"},
	"queretaro":     {"querétaro", "queretaro fc"},
	"puebla":        {"club puebla"},
	"tijuana":       {"club tijuana", "xolos"},

	// African
	"al ahly":           {"al-ahly", "ahly cairo"},
	"zamalek":           {"zamalek sc"},
	"al hilal":          {"al-hilal", "al hilal omdurman"},
	"esperance":         {"esperance tunis", "es tunis"},
	"wydad":             {"wydad casablanca", "wydad ac"},
	"raja":              {"raja casablanca", "raja ca"},
	"mamelodi sundowns": {"sundowns"},
	"kaizer chiefs":     {"kaizer chiefs fc"},
	"orlando pirates":   {"orlando pirates fc"},
	"tp mazembe":        {"tout puissant mazembe"},
	"simba":             {"simba sc"},
	"young africans":    {"young africans sc", "yanga"},
}

var (
	clubTokens    = `fc|cf|sc|ac|afc|ssc|rc|rcd|cd|ud|sd|as|us|ss|sl|fk|nk|sk|bk|if|ff|gf|ik|tk|pk|jk|hk|mk|ok|rk|vk|ms|ks|1\.`
	suffixTokenRe = regexp.MustCompile(`\s*(` + clubTokens + `)\s*$`)
	prefixTokenRe = regexp.MustCompile(`^(` + clubTokens + `)\s*`)
	parenRe       = regexp.MustCompile(`\s*\([^)]*\)\s*`)
	trailingDash  = regexp.MustCompile(`\s*-\s*$`)
	punctRe       = regexp.MustCompile(`['.\-"()]`)
	nonWordRe     = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// Matcher resolves team name variations across data sources.
type Matcher struct {
	aliasLookup map[string]string
}

// NewMatcher builds a Matcher with the reverse alias lookup populated.
func NewMatcher() *Matcher {
	lookup := make(map[string]string, len(teamAliases)*4)
	for canonical, aliases := range teamAliases {
		lookup[strings.ToLower(canonical)] = canonical
		for _, a := range aliases {
			lookup[strings.ToLower(a)] = canonical
		}
	}
	return &Matcher{aliasLookup: lookup}
}

// Normalize lower-cases a team name, strips club-form tokens and
// punctuation, and collapses it to its canonical alias when one is known.
func (m *Matcher) Normalize(name string) string {
	if name == "" {
		return ""
	}

	n := strings.ToLower(strings.TrimSpace(name))
	n = suffixTokenRe.ReplaceAllString(n, "")
	n = prefixTokenRe.ReplaceAllString(n, "")
	n = parenRe.ReplaceAllString(n, "")
	n = trailingDash.ReplaceAllString(n, "")
	n = punctRe.ReplaceAllString(n, "")
	n = nonWordRe.ReplaceAllString(n, " ")
	n = strings.Join(strings.Fields(n), " ")

	if canonical, ok := m.aliasLookup[n]; ok {
		return canonical
	}
	if canonical, ok := m.aliasLookup[strings.ReplaceAll(n, " ", "")]; ok {
		return canonical
	}
	return n
}

// Similarity scores how likely two names denote the same team, in [0, 1].
// Scoring is tiered: exact normalized match, containment, shared
// significant words, shared word prefixes, then a sequence ratio
// fallback.
func (m *Matcher) Similarity(name1, name2 string) float64 {
	n1 := m.Normalize(name1)
	n2 := m.Normalize(name2)

	if n1 == n2 {
		return 1.0
	}

	n1ns := strings.ReplaceAll(n1, " ", "")
	n2ns := strings.ReplaceAll(n2, " ", "")
	if n1ns == n2ns {
		return 1.0
	}

	if n1 != "" && n2 != "" {
		if strings.Contains(n2, n1) || strings.Contains(n1, n2) {
			return 0.92
		}
		if strings.Contains(n2ns, n1ns) || strings.Contains(n1ns, n2ns) {
			return 0.90
		}
	}

	words1 := strings.Fields(n1)
	words2 := strings.Fields(n2)

	// Shared significant words, e.g. "netanya" in "maccabi netanya".
	significant := 0
	set2 := make(map[string]struct{}, len(words2))
	for _, w := range words2 {
		set2[w] = struct{}{}
	}
	for _, w := range words1 {
		if len([]rune(w)) >= 4 {
			if _, ok := set2[w]; ok {
				significant++
			}
		}
	}
	if significant > 0 {
		return min(0.88, 0.80+float64(significant)*0.04)
	}

	// Shared four-rune word prefixes.
	for _, w1 := range words1 {
		r1 := []rune(w1)
		if len(r1) < 4 {
			continue
		}
		for _, w2 := range words2 {
			r2 := []rune(w2)
			if len(r2) >= 4 && string(r1[:4]) == string(r2[:4]) {
				return 0.82
			}
		}
	}

	return max(sequenceRatio(n1, n2), sequenceRatio(n1ns, n2ns))
}

// IsMatch reports whether two names clear the given similarity
// threshold.
func (m *Matcher) IsMatch(name1, name2 string, threshold float64) bool {
	return m.Similarity(name1, name2) >= threshold
}

// sequenceRatio is the classic matching-blocks ratio: twice the total
// length of recursively found longest common substrings over the summed
// input lengths.
func sequenceRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 0
	}
	matched := matchingRunes(ra, rb)
	return 2 * float64(matched) / float64(len(ra)+len(rb))
}

func matchingRunes(a, b []rune) int {
	ai, bi, size := longestCommonRun(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingRunes(a[:ai], b[:bi])
	total += matchingRunes(a[ai+size:], b[bi+size:])
	return total
}

func longestCommonRun(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	// lengths[j] holds the run length ending at b[j-1] for the previous row.
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prev + 1
				if lengths[j] > size {
					size = lengths[j]
					ai = i - size
					bi = j - size
				}
			} else {
				lengths[j] = 0
			}
			prev = cur
		}
	}
	return ai, bi, size
}
