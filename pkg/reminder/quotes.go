package reminder

import (
	"math/rand"
	"sync"
	"time"
)

var smileQuotes = [...]string{
	"A smile is the best makeup any girl can wear. 💄",
	"Smile, it's free therapy! 😊",
	"Your smile is your logo, your personality is your business card. 💼",
	"Life is better when you're laughing. 😂",
	"A smile is a curve that sets everything straight. ✨",
	"Happiness looks gorgeous on you! 🌟",
	"Keep smiling because life is a beautiful thing. 🌺",
	"Smile and let the world wonder why. 😏",
	"A day without laughter is a day wasted. 🎭",
	"Smiling is my favorite exercise. 💪",
	"The world always looks brighter from behind a smile. 🌅",
	"A smile is the universal welcome. 🤗",
	"Wear a smile and have friends; wear a scowl and have wrinkles. 😤",
	"Peace begins with a smile. ☮️",
	"A smile costs nothing but gives much. 💝",
	"Smile - it's the key that fits the lock of everybody's heart. 💖",
	"Every smile makes you a day younger. 👶",
	"A smile is happiness you'll find right under your nose. 👃",
	"Let your smile change the world, but don't let the world change your smile. 🌍",
	"Smile, breathe, and go slowly. 🧘‍♀️",
}


// QuotePool draws quotes uniformly at random. It is safe for concurrent use.
type QuotePool struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewQuotePool(src rand.Source) *QuotePool {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &QuotePool{rng: rand.New(src)}
}

var DefaultQuotes = NewQuotePool(nil)

func (p *QuotePool) Random() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return smileQuotes[p.rng.Intn(len(smileQuotes))]
}

// Pick returns a uniformly chosen element of items. Used for the extras shown
// next to a quote so they share the pool's seeded source.
func (p *QuotePool) Pick(items []string) string {
	if len(items) == 0 {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return items[p.rng.Intn(len(items))]
}
