package web

import (
	"html"

	"github.com/microcosm-cc/bluemonday"

	vm "github.com/ericfisherdev/profilepanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/profilepanel/internal/domain/model"
)

// textPolicy strips every tag from strings the account service returns.
var textPolicy = bluemonday.StrictPolicy()

// plainText removes markup from s and returns unescaped text, ready for the
// templates to escape exactly once.
func plainText(s string) string {
	return html.UnescapeString(textPolicy.Sanitize(s))
}

// toProfileViewModel converts a fetched profile into its view model.
func toProfileViewModel(p model.Profile) vm.ProfileViewModel {
	clean := model.Profile{
		FirstName: plainText(p.FirstName),
		LastName:  plainText(p.LastName),
	}

	return vm.ProfileViewModel{
		DisplayName: clean.DisplayName(),
		FirstName:   clean.FirstName,
		LastName:    clean.LastName,
		Loaded:      true,
	}
}
