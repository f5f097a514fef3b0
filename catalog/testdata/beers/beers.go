package beers

import "context"

type Repository interface{}

type Beer struct {
	ID      int
	Name    string
	Details string
}

type BeerRepository interface {
	Repository
	FindBeers(ctx context.Context, name string) ([]Beer, error)
	CountBeers(names ...string) (int, error)
}

//repoproxy:narrows BeerRepository
type VersionedBeerRepository interface {
	BeerRepository
	FindBeersByStyle(style string) ([]*Beer, error)
}

type Glass struct {
	Ounces int
}
