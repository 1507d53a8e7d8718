package theming

// DefaultKey is the theme used when nothing else applies
const DefaultKey = "default"

// Popup is a short promotional message attached to some seasonal themes
type Popup struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// LandingPopup is the accident-claim call to action shown on the landing page
type LandingPopup struct {
	Enabled     bool   `json:"enabled"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
	ButtonText  string `json:"button_text"`
	ImageURL    string `json:"image_url"`
	OverlayText string `json:"overlay_text"`
}

type Theme struct {
	Key             string       `json:"key"`
	Name            string       `json:"name"`
	PrimaryColor    string       `json:"primary_color"`
	SecondaryColor  string       `json:"secondary_color"`
	BackgroundColor string       `json:"background_color"`
	TextColor       string       `json:"text_color"`
	AccentColor     string       `json:"accent_color"`
	Banner          string       `json:"banner"`
	HeroBackground  string       `json:"hero_background"`
	IconsPath       string       `json:"icons_path"`
	Animations      []string     `json:"animations"`
	Popup           *Popup       `json:"popup"`
	LandingPopup    LandingPopup `json:"landing_popup"`
}

func seasonal(key, name, primary, secondary, background, text, accent string, animations ...string) Theme {
	if animations == nil {
		animations = []string{}
	}
	return Theme{
		Key:             key,
		Name:            name,
		PrimaryColor:    primary,
		SecondaryColor:  secondary,
		BackgroundColor: background,
		TextColor:       text,
		AccentColor:     accent,
		Banner:          "themes/" + key + "/banner.jpg",
		IconsPath:       "themes/" + key + "/icons/",
		Animations:      animations,
	}
}

func withPopup(t Theme, title, content string) Theme {
	t.Popup = &Popup{Title: title, Content: content}
	return t
}

func withLanding(t Theme, title, subtitle, description, button, overlay string) Theme {
	t.LandingPopup = LandingPopup{
		Enabled:     true,
		Title:       title,
		Subtitle:    subtitle,
		Description: description,
		ButtonText:  button,
		OverlayText: overlay,
	}
	return t
}

// Predefined holds the built-in themes keyed by Theme.Key
var Predefined = map[string]Theme{}

// Keys lists the predefined theme keys in calendar order
var Keys []string

func register(t Theme) {
	Predefined[t.Key] = t
	Keys = append(Keys, t.Key)
}

func init() {
	register(withLanding(
		seasonal(DefaultKey, "Default", "#0b5cff", "#00d4ff", "#ffffff", "#000000", "#d4af37"),
		"Had an Accident?",
		"Get a Replacement Car Now!",
		"Don't wait. Prestige Car Hire Management LTD provides stress-free, fast replacement vehicles while we manage your insurance claim. We're here to help you get back on the road.",
		"Report an Accident & Start Claim (Fast 5 Mins)",
		"Fast & Reliable Replacement Vehicles Available 24/7",
	))
	register(withLanding(
		withPopup(seasonal("new_year", "New Year", "#FFD700", "#000000", "#1a1a1a", "#ffffff", "#FFD700", "confetti"),
			"Happy New Year!", "Start the year with great deals 🎉"),
		"New Year, New Start",
		"Get Your Replacement Vehicle Today!",
		"Start the new year right. Prestige Car Hire Management LTD provides fast, reliable replacement vehicles for all your needs. Let us help you get back on the road.",
		"Get Started Now",
		"Professional Service Available 24/7",
	))
	register(withLanding(
		withPopup(seasonal("valentine", "Valentine's Day", "#FF69B4", "#FFC0CB", "#fff5f8", "#4a1a2e", "#FF69B4", "hearts"),
			"Be Mine", "Special Valentine deals 💘"),
		"Show You Care",
		"Get a Replacement Vehicle Fast!",
		"During stressful times, we're here for you. Prestige Car Hire Management LTD provides caring, professional service with fast replacement vehicles while we manage your insurance claim.",
		"Request Your Vehicle",
		"Compassionate Service When You Need It Most",
	))
	register(withLanding(
		seasonal("easter", "Easter", "#FF69B4", "#90EE90", "#f0fff4", "#1a4d1a", "#90EE90", "eggs"),
		"Easter Getaway",
		"Reliable Replacement Vehicles Available",
		"Don't let an accident spoil your Easter plans. Prestige Car Hire Management LTD provides quick replacement vehicles so you can get back on the road and enjoy the holiday.",
		"Get Your Vehicle Today",
		"Fast Service for Your Easter Travel",
	))
	register(withLanding(
		seasonal("spring", "Spring", "#90EE90", "#FFD700", "#f5fff5", "#1a4d1a", "#90EE90", "flowers"),
		"Spring Forward",
		"Get Back on the Road This Spring",
		"Fresh start this spring. Prestige Car Hire Management LTD provides reliable replacement vehicles with excellent customer service. We handle your insurance claim while you get back to your routine.",
		"Start Your Journey",
		"Fresh Service for a Fresh Season",
	))
	register(withLanding(
		seasonal("summer", "Summer", "#FFA500", "#00CED1", "#fff8e1", "#3e2723", "#FFA500", "sunshine"),
		"Summer Road Trip Ready",
		"Fast Replacement Vehicles Available",
		"Don't miss your summer adventures. Prestige Car Hire Management LTD provides quick replacement vehicles so you can continue your plans while we handle your insurance claim.",
		"Get Your Summer Vehicle",
		"Don't Let Accidents Ruin Your Summer",
	))
	register(withLanding(
		seasonal("autumn", "Autumn", "#FF8C00", "#8B4513", "#fff3e0", "#3e2723", "#FF8C00", "leaves"),
		"Autumn Reliability",
		"Dependable Replacement Vehicles",
		"As autumn arrives, trust Prestige Car Hire Management LTD for reliable replacement vehicles. We provide fast, professional service while managing your insurance claim.",
		"Get Your Replacement Vehicle",
		"Trustworthy Service for Autumn Travel",
	))
	register(withLanding(
		withPopup(seasonal("halloween", "Halloween", "#FF4500", "#000000", "#1a1a1a", "#ff6b35", "#FF4500", "bats", "ghosts"),
			"Boo!", "Spooktacular deals this Halloween 🎃"),
		"Don't Be Scared",
		"Get a Replacement Vehicle Fast!",
		"Accidents can be scary, but we're here to help. Prestige Car Hire Management LTD provides fast replacement vehicles while we handle the spooky insurance paperwork.",
		"Get Help Now",
		"Fast Service, No Tricks!",
	))
	register(withLanding(
		withPopup(seasonal("black_friday", "Black Friday", "#000000", "#FF0000", "#000000", "#ffffff", "#FF0000", "sparkles"),
			"Black Friday Sale!", "Huge discounts available 🛍️"),
		"Black Friday Deals",
		"Special Offers on Replacement Vehicles",
		"Take advantage of our Black Friday specials. Prestige Car Hire Management LTD offers great deals on replacement vehicles while we manage your insurance claim.",
		"Claim Your Deal Now",
		"Limited Time Offers Available",
	))
	register(withLanding(
		withPopup(seasonal("christmas", "Christmas", "#C4122E", "#0B6B3A", "#0d2818", "#ffffff", "#C4122E", "snow", "string-lights"),
			"Merry Christmas!", "Enjoy our festive offers 🎄"),
		"Season's Greetings",
		"Don't Let Accidents Spoil Christmas",
		"Keep the festive spirit alive. Prestige Car Hire Management LTD provides fast replacement vehicles so you can enjoy Christmas while we handle your insurance claim.",
		"Get Your Festive Vehicle",
		"Making Christmas Travel Stress-Free",
	))
	register(withLanding(
		seasonal("winter", "Winter", "#4169E1", "#FFFFFF", "#e3f2fd", "#0d47a1", "#4169E1", "snowflakes"),
		"Winter Weather Protection",
		"Reliable Replacement Vehicles",
		"Winter driving can be challenging. Prestige Car Hire Management LTD provides dependable replacement vehicles for all weather conditions while we manage your insurance claim.",
		"Get Your Winter Vehicle",
		"Safe Vehicles for Winter Roads",
	))
}

// Lookup returns the predefined theme for key, falling back to the default theme
func Lookup(key string) (Theme, bool) {
	if t, ok := Predefined[key]; ok {
		return t, true
	}
	return Predefined[DefaultKey], false
}

// Default returns the default theme
func Default() Theme {
	return Predefined[DefaultKey]
}
