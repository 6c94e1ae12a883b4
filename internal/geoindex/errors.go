package geoindex

import (
	"errors"
	"fmt"
	"strings"
)

// Kind names the entity a lookup key belongs to.
type Kind string

const (
	KindCanton             Kind = "canton"
	KindDistrict           Kind = "district"
	KindZipCode            Kind = "zip_code"
	KindPostalCommunity    Kind = "postal_community"
	KindPoliticalCommunity Kind = "political_community"
)

// NotFoundError is returned by every lookup whose key has no entry in the index.
type NotFoundError struct {
	Kind Kind
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("geoindex: %s %q not found", strings.ReplaceAll(string(e.Kind), "_", " "), e.Key)
}

func notFound(kind Kind, key string) error {
	return &NotFoundError{Kind: kind, Key: key}
}

// IsNotFound reports whether err, or anything it wraps, is a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// AsNotFound unwraps err into a *NotFoundError when possible.
func AsNotFound(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf, true
	}
	return nil, false
}
