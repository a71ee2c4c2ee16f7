// Package routes names the destinations of the app.
package routes

import (
	"github.com/abhisek/flashiz/internal/collection"
	"github.com/abhisek/flashiz/internal/router"
)

// Route names.
const (
	NameDecks      = "decks"
	NameBrowse     = "browse"
	NameStats      = "stats"
	NameReview     = "review"
	NameCardDetail = "card"
)

// Top-level sections.
var (
	Decks  = router.Route{Name: NameDecks}
	Browse = router.Route{Name: NameBrowse}
	Stats  = router.Route{Name: NameStats}
)

// TopLevel lists the sections in header order, start section first.
var TopLevel = []router.Route{Decks, Browse, Stats}

// Review studies deck id.
func Review(id collection.DeckID) router.Route {
	return router.Route{Name: NameReview, ID: int64(id)}
}

// CardDetail shows card id.
func CardDetail(id collection.CardID) router.Route {
	return router.Route{Name: NameCardDetail, ID: int64(id)}
}

// NewController returns a controller starting at the deck list.
func NewController() *router.Controller {
	return router.New(Decks, TopLevel[1:]...)
}
