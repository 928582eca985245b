package promo

import "strings"

// BillingDocsURL explains which keys can use the video models.
const BillingDocsURL = "https://ai.google.dev/gemini-api/docs/billing"

var loadingMessages = map[string][]string{
	"en": {
		"Warming up the cameras...",
		"Writing your storyboard...",
		"Setting up the lights...",
		"Rendering the scenes...",
		"Adding the final polish...",
		"Almost there, videos take a few minutes...",
	},
	"id": {
		"Menyiapkan kamera...",
		"Menyusun storyboard...",
		"Mengatur pencahayaan...",
		"Merender adegan...",
		"Menambahkan sentuhan akhir...",
		"Sebentar lagi, video butuh beberapa menit...",
	},
}

var failureMessages = map[string]map[FailureCode]string{
	"en": {
		CodeCredential: "Your API key was rejected or cannot access the video model. Select a key from a Google Cloud project with billing enabled.",
		CodeNoResult:   "Generation completed but no video was returned. Please try again.",
		CodeTimeout:    "Video generation is taking too long. Please try again.",
		CodeGeneric:    "Video generation failed. Please try again.",
	},
	"id": {
		CodeCredential: "Kunci API ditolak atau tidak memiliki akses ke model video. Pilih kunci dari proyek Google Cloud dengan penagihan aktif.",
		CodeNoResult:   "Proses selesai tetapi video tidak diterima. Silakan coba lagi.",
		CodeTimeout:    "Pembuatan video terlalu lama. Silakan coba lagi.",
		CodeGeneric:    "Gagal membuat video. Silakan coba lagi.",
	},
}

func normalizeLocale(locale string) string {
	if strings.HasPrefix(strings.ToLower(locale), "id") {
		return "id"
	}
	return "en"
}

// LoadingMessage returns the cosmetic progress text for a step.
func LoadingMessage(locale string, step int) string {
	msgs := loadingMessages[normalizeLocale(locale)]
	if step < 0 {
		step = 0
	}
	return msgs[step%len(msgs)]
}

// FailureMessage returns the user-facing text for a failure code.
func FailureMessage(locale string, code FailureCode) string {
	msgs := failureMessages[normalizeLocale(locale)]
	if msg, ok := msgs[code]; ok {
		return msg
	}
	return msgs[CodeGeneric]
}
