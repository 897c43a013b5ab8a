package models

// CourseTier is a purchasable course level.
type CourseTier struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	ChannelID   string `json:"channel_id"`
}

var defaultCourses = []CourseTier{
	{
		Key:   "mustaqil",
		Name:  "🌟 Mustaqil",
		Price: 197000,
		Description: "✅ 21 kunlik dastur\n" +
			"✅ Kunlik vazifalar\n" +
			"✅ Ovqatlanish rejasi\n" +
			"✅ Sport mashqlari",
		ChannelID: "@mustaqil_kurs",
	},
	{
		Key:   "premium",
		Name:  "💎 Premium",
		Price: 397000,
		Description: "✅ 21 kunlik dastur\n" +
			"✅ Shaxsiy konsultatsiya\n" +
			"✅ WhatsApp guruh\n" +
			"✅ Haftalik nazorat",
		ChannelID: "@premium_kurs",
	},
	{
		Key:   "vip",
		Name:  "👑 VIP",
		Price: 597000,
		Description: "✅ 21 kunlik dastur\n" +
			"✅ 1:1 mentor\n" +
			"✅ Video qo'ng'iroqlar\n" +
			"✅ Shaxsiy rejim",
		ChannelID: "@vip_kurs",
	},
}

// DefaultCourses returns a copy of the built-in tiers.
func DefaultCourses() []CourseTier {
	out := make([]CourseTier, len(defaultCourses))
	copy(out, defaultCourses)
	return out
}

// CourseCatalog is an ordered, read-only set of tiers.
type CourseCatalog struct {
	tiers []CourseTier
	byKey map[string]CourseTier
}

func NewCourseCatalog(tiers []CourseTier) *CourseCatalog {
	c := &CourseCatalog{
		tiers: make([]CourseTier, 0, len(tiers)),
		byKey: make(map[string]CourseTier, len(tiers)),
	}
	for _, t := range tiers {
		if _, dup := c.byKey[t.Key]; dup {
			continue
		}
		c.tiers = append(c.tiers, t)
		c.byKey[t.Key] = t
	}
	return c
}

func (c *CourseCatalog) Get(key string) (CourseTier, bool) {
	t, ok := c.byKey[key]
	return t, ok
}

func (c *CourseCatalog) All() []CourseTier {
	out := make([]CourseTier, len(c.tiers))
	copy(out, c.tiers)
	return out
}

// Name returns the display name for key, or the key itself when unknown.
func (c *CourseCatalog) Name(key string) string {
	if t, ok := c.byKey[key]; ok {
		return t.Name
	}
	return key
}
