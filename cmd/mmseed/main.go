// mmseed populates a running micromatch server with generated
// influencer profiles for demos and local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/micromatch/micromatch"
	"github.com/micromatch/micromatch/client"
)

var firstNames = []string{
	"Ava", "Liam", "Olivia", "Noah", "Emma", "Oliver", "Charlotte", "Elijah",
	"Amelia", "James", "Sophia", "Benjamin", "Isabella", "Lucas", "Mia",
	"Henry", "Evelyn", "Alexander", "Harper", "Michael",
}

var lastNames = []string{
	"Smith", "Jones", "Williams", "Brown", "Davis", "Miller", "Wilson",
	"Moore", "Taylor", "Anderson", "Thomas", "Jackson", "White", "Harris",
	"Martin", "Thompson", "Garcia", "Martinez", "Robinson", "Clark",
}

var platforms = []string{"Instagram", "TikTok", "YouTube", "Blog", "Facebook"}

var niches = []string{
	"Skincare", "Makeup", "Haircare", "Nails", "Fragrance", "Clean Beauty",
	"Vegan Cosmetics", "Luxury Beauty", "Affordable Finds", "DIY Beauty",
}

var locations = []string{
	"New York", "Los Angeles", "Chicago", "Houston", "Phoenix",
	"Philadelphia", "San Antonio", "San Diego", "Dallas", "San Jose",
	"Austin", "Jacksonville", "Fort Worth", "Columbus", "Charlotte",
	"San Francisco", "Indianapolis", "Seattle", "Denver", "Washington",
}

var bios = []string{
	"Passionate about natural skincare and sustainable beauty. Sharing my journey to glowing skin!",
	"Makeup artist and beauty enthusiast. Love creating bold looks and reviewing new products.",
	"Your go-to for honest reviews on haircare products and styling tips for healthy locks.",
	"Exploring the world of clean beauty and sharing my favorite non-toxic finds.",
	"Dedicated to helping you find the best affordable makeup. Beauty on a budget!",
	"Luxury beauty aficionado. Unboxing and reviewing high-end skincare and cosmetics.",
	"Vegan beauty advocate. Discovering cruelty-free and plant-based products.",
	"From everyday glam to special occasion looks, I've got your makeup needs covered.",
	"Sharing my favorite DIY beauty recipes and natural remedies for healthy skin and hair.",
	"Obsessed with all things nails! From intricate designs to simple manicures, I share it all.",
	"Beauty is my passion! Join me for tutorials, product reviews, and beauty hacks.",
	"Helping you achieve your best skin with science-backed skincare routines.",
}

func generateInfluencer(index int, at time.Time) micromatch.Record {
	firstName := firstNames[index%len(firstNames)]
	lastName := lastNames[index%len(lastNames)]
	email := fmt.Sprintf("%s.%s%d@example.com",
		strings.ToLower(firstName), strings.ToLower(lastName), index)
	id := fmt.Sprintf("%s_%d", micromatch.UserTypeInfluencer, at.UnixMilli()+int64(index))

	return micromatch.Record{
		ID:       id,
		Email:    email,
		UserType: micromatch.UserTypeInfluencer,
		Profile: map[string]string{
			"firstName":      firstName,
			"lastName":       lastName,
			"bio":            bios[index%len(bios)],
			"profilePicture": "",
			"age":            fmt.Sprintf("%d", 20+index%10),
			"location":       locations[index%len(locations)],
			"gender":         []string{"Female", "Male"}[index%2],
			"platform":       platforms[index%len(platforms)],
			"followerCount":  fmt.Sprintf("%d", (rand.Intn(90)+10)*1000),
			"niches":         niches[index%len(niches)],
			"pricingRange":   fmt.Sprintf("$%d-%d/post", (rand.Intn(5)+1)*25, (rand.Intn(5)+6)*25),
		},
		Partnerships: []micromatch.Partnership{},
		Requests:     []micromatch.ConnectionRequest{},
	}
}

func main() {
	var (
		apiURL string
		count  int
	)
	flag.StringVar(&apiURL, "api", "http://localhost:3001", "base URL of the micromatch server")
	flag.IntVar(&count, "count", 20, "number of influencer profiles to seed")
	flag.Parse()

	ctx := context.Background()
	cli := client.New(apiURL)

	if _, err := cli.Health(ctx); err != nil {
		slog.Error("server is not reachable", slog.String("error", err.Error()))
		os.Exit(1)
	}

	now := time.Now()
	for i := 0; i < count; i++ {
		record := generateInfluencer(i, now)
		if err := cli.Create(ctx, record.ID, record); err != nil {
			slog.Error("failed to seed influencer",
				slog.String("id", record.ID),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		slog.Info("seeded influencer",
			slog.String("id", record.ID),
			slog.String("name", record.DisplayName()),
		)
	}
	slog.Info("seeding complete", slog.Int("count", count))
}
