package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	favoritesBucket = []byte("favorites")
	placesBucket    = []byte("places")
	searchesBucket  = []byte("searches")
)

var ErrNotFound = errors.New("not found")

type Store struct {
	db *bolt.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{favoritesBucket, placesBucket, searchesBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SaveFavorite(place *Place) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		fav := place.Clone()
		fav.IsFavorite = true
		fav.UpdatedAt = time.Now()
		data, err := json.Marshal(fav)
		if err != nil {
			return err
		}
		return tx.Bucket(favoritesBucket).Put([]byte(fav.ID), data)
	})
}

func (s *Store) DeleteFavorite(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(favoritesBucket).Delete([]byte(id))
	})
}

func (s *Store) IsFavorite(id string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(favoritesBucket).Get([]byte(id)) != nil
		return nil
	})
	return found, err
}

func (s *Store) GetFavorites() ([]*Place, error) {
	favorites := []*Place{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(favoritesBucket).ForEach(func(_ []byte, v []byte) error {
			var place Place
			if err := json.Unmarshal(v, &place); err != nil {
				return err
			}
			favorites = append(favorites, &place)
			return nil
		})
	})
	sortByName(favorites)
	return favorites, err
}

func (s *Store) SavePlaces(places []*Place) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(placesBucket)
		for _, place := range places {
			data, err := json.Marshal(place)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(place.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetPlace(id string) (*Place, error) {
	var place Place
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(placesBucket).Get([]byte(id))
		if data == nil {
			data = tx.Bucket(favoritesBucket).Get([]byte(id))
		}
		if data == nil {
			return fmt.Errorf("place %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &place)
	})
	if err != nil {
		return nil, err
	}
	return &place, nil
}

func (s *Store) GetAllPlaces() ([]*Place, error) {
	var places []*Place
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(placesBucket).ForEach(func(_ []byte, v []byte) error {
			var place Place
			if err := json.Unmarshal(v, &place); err != nil {
				return nil
			}
			places = append(places, &place)
			return nil
		})
	})
	sortByName(places)
	return places, err
}

func (s *Store) SaveSearch(meta *SearchMetadata) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		return tx.Bucket(searchesBucket).Put(searchKey(meta.Phrase, meta.Near), data)
	})
}

func (s *Store) GetSearch(phrase, near string) (*SearchMetadata, error) {
	var meta SearchMetadata
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(searchesBucket).Get(searchKey(phrase, near))
		if data == nil {
			return fmt.Errorf("search %q: %w", phrase, ErrNotFound)
		}
		return json.Unmarshal(data, &meta)
	})
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

func searchKey(phrase, near string) []byte {
	return []byte(strings.ToLower(strings.TrimSpace(near)) + "\x00" + strings.ToLower(strings.TrimSpace(phrase)))
}

// sortByName orders places case-insensitively by name, falling back to ID.
func sortByName(places []*Place) {
	sort.SliceStable(places, func(i, j int) bool {
		ni, nj := places[i].Name, places[j].Name
		if ni == "" {
			ni = places[i].ID
		}
		if nj == "" {
			nj = places[j].ID
		}
		return strings.ToLower(ni) < strings.ToLower(nj)
	})
}
