package service

import (
	"errors"

	"github.com/spiffcs/codewatch/internal/model"
)

// classify makes sure every failure handed to observers is a *model.Error.
// Anything the gateway left unclassified is treated as a transport failure.
func classify(err error, subject string) error {
	var classified *model.Error
	if errors.As(err, &classified) {
		return err
	}
	return &model.Error{Kind: model.KindNetwork, Subject: subject, Err: err}
}
