package handlers

import (
	_ "embed"
	"net/http"
)

//go:embed static/index.html
var landingPage []byte

// LandingPage returns the embedded landing page document.
func LandingPage() []byte {
	return landingPage
}

// Landing serves the static landing page. The body is identical for every request.
func Landing(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, http.StatusOK, landingPage)
}
