package domain

// Page is one cursor-addressed page of a server collection.
type Page[T any] struct {
	Results  []T    `json:"results"`
	Count    int    `json:"count"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
}

func (p Page[T]) HasNext() bool {
	return p.Next != ""
}
