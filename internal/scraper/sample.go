package scraper

import "github.com/camperoutlet/camperdeals/internal/models"

// SampleDeals returns the fixed fallback catalog used when the external
// scraper fails. The records are already normalized so a degraded run always
// has something valid to persist.
func SampleDeals() []models.Deal {
	rating := func(v float64) *float64 { return &v }
	reviews := func(v int) *int { return &v }

	return []models.Deal{
		{
			ASIN:            "B09SAMPLE1",
			Title:           "Tienda de Campaña Coleman 4 Personas - Impermeable 3000mm",
			Description:     "Tienda familiar con tecnología WeatherTec. Montaje en 10 minutos.",
			Price:           89.99,
			OriginalPrice:   149.99,
			DiscountPercent: 40,
			ImageURL:        "https://images.unsplash.com/photo-1504280390367-361c6d9f38f4?w=400",
			SourceURL:       "https://www.amazon.es/dp/B09SAMPLE1",
			AffiliateURL:    "https://www.amazon.es/dp/B09SAMPLE1?tag=camperdeals-21",
			Category:        models.CategoryTents,
			Rating:          rating(4.5),
			ReviewCount:     reviews(234),
			IsActive:        true,
		},
		{
			ASIN:            "B09SAMPLE2",
			Title:           "Saco de Dormir Mammut -15C - Pluma de Ganso",
			Description:     "Saco profesional para montaña. Relleno 90/10 pluma.",
			Price:           129,
			OriginalPrice:   219,
			DiscountPercent: 41,
			ImageURL:        "https://images.unsplash.com/photo-1510312305653-8ed496efae75?w=400",
			SourceURL:       "https://www.amazon.es/dp/B09SAMPLE2",
			AffiliateURL:    "https://www.amazon.es/dp/B09SAMPLE2?tag=camperdeals-21",
			Category:        models.CategorySleepingBag,
			Rating:          rating(4.8),
			ReviewCount:     reviews(156),
			IsActive:        true,
		},
		{
			ASIN:            "B09SAMPLE3",
			Title:           "Mochila Trekking Deuter 65L - Con Funda Lluvia",
			Description:     "Sistema de ventilación Aircontact. Ideal rutas largas.",
			Price:           149.99,
			OriginalPrice:   249.99,
			DiscountPercent: 40,
			ImageURL:        "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=400",
			SourceURL:       "https://www.amazon.es/dp/B09SAMPLE3",
			AffiliateURL:    "https://www.amazon.es/dp/B09SAMPLE3?tag=camperdeals-21",
			Category:        models.CategoryBackpacks,
			Rating:          rating(4.7),
			ReviewCount:     reviews(89),
			IsActive:        true,
		},
		{
			ASIN:            "B09SAMPLE4",
			Title:           "Hornillo Gas Jetboil Flash - Hervidor Integrado",
			Description:     "Hierve 500ml en 100 segundos. Sistema FluxRing.",
			Price:           99.99,
			OriginalPrice:   159.99,
			DiscountPercent: 37,
			ImageURL:        "https://images.unsplash.com/photo-1536746803623-cef87080bfc8?w=400",
			SourceURL:       "https://www.amazon.es/dp/B09SAMPLE4",
			AffiliateURL:    "https://www.amazon.es/dp/B09SAMPLE4?tag=camperdeals-21",
			Category:        models.CategoryCooking,
			Rating:          rating(4.9),
			ReviewCount:     reviews(312),
			IsActive:        true,
		},
		{
			ASIN:            "B09SAMPLE5",
			Title:           "Linterna Frontal Petzl Actik Core - 450 Lumens",
			Description:     "Recargable USB. Modo rojo para visión nocturna.",
			Price:           44.99,
			OriginalPrice:   74.99,
			DiscountPercent: 40,
			ImageURL:        "https://images.unsplash.com/photo-1567653418876-5bb0e566e1c2?w=400",
			SourceURL:       "https://www.amazon.es/dp/B09SAMPLE5",
			AffiliateURL:    "https://www.amazon.es/dp/B09SAMPLE5?tag=camperdeals-21",
			Category:        models.CategoryLighting,
			Rating:          rating(4.6),
			ReviewCount:     reviews(567),
			IsActive:        true,
		},
	}
}
