package catalog

import (
	"time"

	"memorabilia-market/internal/models"
)

// SampleCatalog returns the demo listings used when SEED_CATALOG is enabled.
// Auction end dates are relative to now.
func SampleCatalog(now time.Time) []models.Product {
	inDays := func(d int) *time.Time {
		t := now.Add(time.Duration(d) * 24 * time.Hour).UTC()
		return &t
	}

	return []models.Product{
		{
			Name:           "Signed Stage Guitar",
			Description:    "Electric guitar played and signed on the final night of the world tour.",
			Price:          2500,
			ImageURL:       "/images/guitar.jpg",
			CelebrityName:  "Jimi Vale",
			IsAuction:      true,
			EndDate:        inDays(5),
			CharityPercent: 20,
		},
		{
			Name:           "Championship Game Jersey",
			Description:    "Match-worn jersey with certificate of authenticity.",
			Price:          899.99,
			ImageURL:       "/images/jersey.jpg",
			CelebrityName:  "Marcus Reed",
			IsAuction:      false,
			CharityPercent: 10,
		},
		{
			Name:          "Red Carpet Gown",
			Description:   "Designer gown worn at the premiere, dry-cleaned and boxed.",
			Price:         4000,
			ImageURL:      "/images/gown.jpg",
			CelebrityName: "Elena Cruz",
			IsAuction:     true,
			EndDate:       inDays(2),
		},
		{
			Name:          "Autographed Script",
			Description:   "Shooting script signed by the lead cast.",
			Price:         350,
			ImageURL:      "/images/script.jpg",
			CelebrityName: "Noah Hart",
			IsAuction:     false,
		},
		{
			Name:           "Vintage Microphone",
			Description:    "Studio microphone from the debut album sessions.",
			Price:          1200,
			ImageURL:       "/images/microphone.jpg",
			CelebrityName:  "Ava Stone",
			IsAuction:      true,
			CharityPercent: 50,
		},
	}
}
