package http

import "net/http"

// SetupStaticFiles configures static file serving.
// Uploaded avatars live under avatarDir and are served at /static/avatars/,
// matching the URLs stored on the pages.
func SetupStaticFiles(mux *http.ServeMux, avatarDir string) {
	fs := http.FileServer(http.Dir(avatarDir))
	mux.Handle("GET /static/avatars/", http.StripPrefix("/static/avatars/", fs))
}
