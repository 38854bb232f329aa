// Package content holds the playable material: the quiz question bank
// and the board layout. Built-in defaults can be replaced per deployment
// with YAML files referenced from the config.
package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Question kinds, one per round type.
const (
	QuestionReversed = "reversed" // a word spelled backwards, guess the original
	QuestionFlag     = "flag"     // a flag emoji, guess the country
	QuestionTrivia   = "trivia"
	QuestionDrawing  = "drawing"
)

// Question is one round's material. For drawing rounds Text is the
// prompt everyone draws and Answer is unused.
type Question struct {
	ID         string   `yaml:"id" json:"id"`
	Kind       string   `yaml:"kind" json:"kind"`
	Text       string   `yaml:"text" json:"text"`
	Answer     string   `yaml:"answer" json:"answer,omitempty"`
	Alternates []string `yaml:"alternates" json:"alternates,omitempty"`
}

// Buzzer reports whether the question runs as a buzzer round.
func (q *Question) Buzzer() bool {
	return q.Kind != QuestionDrawing
}

// Tile kinds.
const (
	TileGo          = "go"
	TileProperty    = "property"
	TileRailroad    = "railroad"
	TileUtility     = "utility"
	TileChance      = "chance"
	TileChest       = "chest"
	TileTax         = "tax"
	TileJail        = "jail"
	TileGoToJail    = "go_to_jail"
	TileFreeParking = "free_parking"
)

// Tile describes one board square. Price fields are zero for
// non-purchasable kinds.
type Tile struct {
	ID            int    `yaml:"id" json:"id"`
	Kind          string `yaml:"kind" json:"kind"`
	Name          string `yaml:"name" json:"name"`
	NameEn        string `yaml:"name_en" json:"name_en,omitempty"`
	Group         string `yaml:"group" json:"group,omitempty"`
	Price         int    `yaml:"price" json:"price,omitempty"`
	HousePrice    int    `yaml:"house_price" json:"house_price,omitempty"`
	Rent          int    `yaml:"rent" json:"rent,omitempty"`
	RentWithHouse []int  `yaml:"rent_with_house" json:"rent_with_house,omitempty"`
	RentWithHotel int    `yaml:"rent_with_hotel" json:"rent_with_hotel,omitempty"`
	RentByCount   []int  `yaml:"rent_by_count" json:"rent_by_count,omitempty"`
	MortgageValue int    `yaml:"mortgage_value" json:"mortgage_value,omitempty"`
	TaxAmount     int    `yaml:"tax_amount" json:"tax_amount,omitempty"`
}

// Purchasable reports whether the tile can be owned.
func (t *Tile) Purchasable() bool {
	switch t.Kind {
	case TileProperty, TileRailroad, TileUtility:
		return true
	}
	return false
}

// LoadQuestions reads a question bank override, or returns the built-in
// bank when path is empty.
func LoadQuestions(path string) ([]Question, error) {
	if path == "" {
		return DefaultQuestions(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var qs []Question
	if err := yaml.Unmarshal(data, &qs); err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("question bank %s is empty", path)
	}
	for i := range qs {
		switch qs[i].Kind {
		case QuestionReversed, QuestionFlag, QuestionTrivia, QuestionDrawing:
		case "":
			qs[i].Kind = QuestionTrivia
		default:
			return nil, fmt.Errorf("question %s has unknown kind %q", qs[i].ID, qs[i].Kind)
		}
	}
	return qs, nil
}

// LoadBoard reads a board override, or returns the built-in board when
// path is empty. Overrides must still be a full 40-tile loop.
func LoadBoard(path string) ([]Tile, error) {
	if path == "" {
		return DefaultBoard(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tiles []Tile
	if err := yaml.Unmarshal(data, &tiles); err != nil {
		return nil, err
	}
	if len(tiles) != BoardSize {
		return nil, fmt.Errorf("board %s has %d tiles, want %d", path, len(tiles), BoardSize)
	}
	return tiles, nil
}
