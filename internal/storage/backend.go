package storage

// Backend is implemented by every persistence engine the provider can use.
type Backend interface {
	SaveFavorite(place *Place) error
	DeleteFavorite(id string) error
	GetFavorites() ([]*Place, error)
	IsFavorite(id string) (bool, error)
	SavePlaces(places []*Place) error
	GetPlace(id string) (*Place, error)
	GetAllPlaces() ([]*Place, error)
	SaveSearch(meta *SearchMetadata) error
	GetSearch(phrase, near string) (*SearchMetadata, error)
	Close() error
}

var (
	_ Backend = (*Store)(nil)
	_ Backend = (*SQLiteStore)(nil)
)

// Open returns the backend selected by driver ("bolt" or "sqlite").
func Open(driver, path string) (Backend, error) {
	switch driver {
	case "", "bolt", "bbolt":
		return NewStore(path)
	case "sqlite":
		return NewSQLiteStore(path)
	default:
		return nil, ErrUnknownDriver{Driver: driver}
	}
}

type ErrUnknownDriver struct {
	Driver string
}

func (e ErrUnknownDriver) Error() string {
	return "unknown storage driver: " + e.Driver
}
