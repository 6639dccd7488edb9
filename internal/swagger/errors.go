package swagger

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrepresentableType is returned for type references the mapper
	// cannot express in the canonical type set.
	ErrUnrepresentableType = errors.New("unrepresentable type")
	// ErrMalformedRelation is returned for a relation naming neither a
	// target nor a through model.
	ErrMalformedRelation = errors.New("relation has neither a target nor a through model")
	// ErrUnknownModel is returned when a relation names a model the
	// resolver does not know.
	ErrUnknownModel = errors.New("unknown model")
)

type ErrorKind string

const (
	KindRoute ErrorKind = "route"
	KindModel ErrorKind = "model"
)

// TranslateError names the route or model whose translation failed.
type TranslateError struct {
	Kind  ErrorKind
	ID    string // route method identifier or model name
	Field string // offending parameter, property or relation, if any
	Err   error
}

func (e *TranslateError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("swagger: %s %s: %s: %v", e.Kind, e.ID, e.Field, e.Err)
	}
	return fmt.Sprintf("swagger: %s %s: %v", e.Kind, e.ID, e.Err)
}

func (e *TranslateError) Unwrap() error { return e.Err }

func routeError(id, field string, err error) error {
	return &TranslateError{Kind: KindRoute, ID: id, Field: field, Err: err}
}

func modelError(id, field string, err error) error {
	// Keep the innermost model error so the message names the model that
	// actually failed, not the one that reached it through a relation.
	var te *TranslateError
	if errors.As(err, &te) && te.Kind == KindModel {
		return err
	}
	return &TranslateError{Kind: KindModel, ID: id, Field: field, Err: err}
}
