package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/SofiaRebecca/Glaucoma/internal/store"
)

// TestQR renders a QR code that opens a test page directly, so the doctor
// can hand a patient tablet a test by letting them scan it.
//
// GET /qr/{test}.png
func TestQR(w http.ResponseWriter, r *http.Request) {
	test := chi.URLParam(r, "test")
	if test == "" || !store.IsCategory(test) {
		http.NotFound(w, r)
		return
	}

	// Encode a URL so scanning opens the test directly
	url := "http://" + r.Host + "/test/" + test

	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "failed to generate qr", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
