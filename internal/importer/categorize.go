package importer

import "strings"

// UnknownCategory is assigned when no rule matches the merchant.
const UnknownCategory = "Unknown"

// Categorizer assigns categories to merchants by case-insensitive
// substring rules. The first matching rule wins, in the order the rules
// were added.
type Categorizer struct {
	categories []string
	patterns   map[string][]string
}

// NewCategorizer creates an empty categorizer.
func NewCategorizer() *Categorizer {
	return &Categorizer{patterns: make(map[string][]string)}
}

// AddRule registers merchant substrings that map to a category. Repeated
// calls for the same category append patterns.
func (c *Categorizer) AddRule(category string, patterns ...string) {
	if _, exists := c.patterns[category]; !exists {
		c.categories = append(c.categories, category)
	}
	for _, p := range patterns {
		c.patterns[category] = append(c.patterns[category], strings.ToLower(p))
	}
}

// Categorize returns the category for a merchant name, or UnknownCategory
// when no rule matches.
func (c *Categorizer) Categorize(merchant string) string {
	if c == nil {
		return UnknownCategory
	}
	lowered := strings.ToLower(merchant)
	for _, category := range c.categories {
		for _, pattern := range c.patterns[category] {
			if strings.Contains(lowered, pattern) {
				return category
			}
		}
	}
	return UnknownCategory
}

// DefaultCategorizer returns rules for common Canadian merchants.
func DefaultCategorizer() *Categorizer {
	c := NewCategorizer()
	c.AddRule("mobile internet", "KOODO AIRTIME", "KOODO MOBILE")
	c.AddRule("internet", "NOVUS")
	c.AddRule("food & other",
		"SAVE ON FOODS", "URBAN FARE", "BC LIQUOR", "WHOLE FOODS",
		"EAST WEST MARKET", "ORGANIC ACRES MARKET", "LITTLE GEM GROCERY",
		"TOP TEN PRODUCE", "LEGACY LIQUOR STORE")
	c.AddRule("takeouts",
		"STARBUCKS", "MR. SUSHI", "HUNNYBEE", "PUREBREAD BAKERY",
		"IRISH TIMES PUB", "CRUST BAKERY", "SMALL VICTORY BAKERY")
	c.AddRule("transportation",
		"LYFT", "UBER", "COMPASS WEB", "COMPASS ACCOUNT", "BC TRANSIT",
		"BCF - ONLINE SALES")
	c.AddRule("home goods",
		"CANADIAN TIRE", "AMAZON.CA", "AMAZON.COM", "DOLLARAMA", "VALUE VILLAGE", "MICHAELS")
	c.AddRule("events", "TICKETLEADER", "SEATGEEK TICKETS", "CINEPLEX", "EVENTBRITE")
	c.AddRule("travel", "VIA RAIL", "AIR CAN", "BOOKING.COM")
	c.AddRule("london drugs", "LONDON DRUGS", "SHOPPERS DRUG")
	c.AddRule("film", "AMAZON CHANNELS", "PRIMEVIDEO")
	return c
}
