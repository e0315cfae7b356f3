package models

import "time"

// PrimeVideoOption is one way to watch a title. Subscription options are
// free for subscribers and carry no price.
type PrimeVideoOption struct {
	Type         string  `json:"type"`
	Label        string  `json:"label"`
	Price        string  `json:"price,omitempty"`
	Amount       float64 `json:"amount,omitempty"`
	Subscription bool    `json:"subscription"`
}

type PrimeVideoTVSeason struct {
	Season      int        `json:"season"`
	TitleID     string     `json:"title_id"`
	Title       string     `json:"title"`
	URL         string     `json:"url,omitempty"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
}

type PrimeVideoMovie struct {
	ASIN      string             `json:"asin"`
	Title     string             `json:"title"`
	Options   []PrimeVideoOption `json:"options"`
	Realm     string             `json:"realm"`
	Locale    string             `json:"locale"`
	Territory string             `json:"territory"`
}

type PrimeVideoTV struct {
	ASIN      string               `json:"asin"`
	Title     string               `json:"title"`
	Options   []PrimeVideoOption   `json:"options"`
	Realm     string               `json:"realm"`
	Locale    string               `json:"locale"`
	Territory string               `json:"territory"`
	Seasons   []PrimeVideoTVSeason `json:"seasons"`
}

func (m *PrimeVideoMovie) Kind() Kind          { return KindPrimeVideoMovie }
func (m *PrimeVideoMovie) ProductASIN() string { return m.ASIN }

func (t *PrimeVideoTV) Kind() Kind          { return KindPrimeVideoTV }
func (t *PrimeVideoTV) ProductASIN() string { return t.ASIN }
