package services

import (
	"strings"
)

// Route is the feature a text message asks for.
type Route string

const (
	RouteRealtime Route = "realtime"
	RouteHome     Route = "home"
	RouteWeather  Route = "weather"
	RouteCovid    Route = "covid"
	RouteLottery  Route = "lottery"
	RouteHelp     Route = "help"
	RouteUnknown  Route = "unknown"
	// RouteLocation is never produced by Classify; location messages always
	// go to the toilet search.
	RouteLocation Route = "location"
)

// Command is a classified text message. Arg holds whatever followed a prefix
// keyword, e.g. the city in "天氣 臺北市" or the date in "樂透 2026-10-17".
// Game is set when the keyword itself names a lottery game.
type Command struct {
	Route Route
	Arg   string
	Game  string
}

var exactRoutes = map[string]Route{
	"go":    RouteRealtime,
	"start": RouteRealtime,
	"垃圾車":   RouteRealtime,
	"home":  RouteHome,
	"回家":    RouteHome,
	"covid": RouteCovid,
	"快篩":    RouteCovid,
	"篩檢":    RouteCovid,
	"help":  RouteHelp,
	"?":     RouteHelp,
	"？":     RouteHelp,
	"說明":    RouteHelp,
}

// prefixRoutes are matched in order; the remainder of the text becomes Arg.
var prefixRoutes = []struct {
	prefix string
	route  Route
	game   string
}{
	{"天氣", RouteWeather, ""},
	{"weather", RouteWeather, ""},
	{"大樂透", RouteLottery, "大樂透"},
	{"威力彩", RouteLottery, "威力彩"},
	{"樂透", RouteLottery, ""},
	{"lottery", RouteLottery, ""},
}

// Classify maps a text message to its route by plain string matching.
// Matching is case-insensitive and ignores surrounding whitespace.
func Classify(text string) Route {
	return ParseCommand(text).Route
}

// ParseCommand classifies text and extracts the argument of prefix routes.
func ParseCommand(text string) Command {
	msg := strings.ToLower(strings.TrimSpace(text))
	if route, ok := exactRoutes[msg]; ok {
		return Command{Route: route}
	}
	for _, p := range prefixRoutes {
		if rest, ok := strings.CutPrefix(msg, p.prefix); ok {
			return Command{Route: p.route, Arg: strings.TrimSpace(rest), Game: p.game}
		}
	}
	return Command{Route: RouteUnknown}
}
