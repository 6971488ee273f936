package main

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"plantmatch/internal/model"
	"plantmatch/internal/repository"
)

func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "plantmatch"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	catalogRepo := repository.NewCatalogRepo(client.Database(dbName))

	plants := []model.Plant{
		{
			Name:        "Bo",
			Image:       "Bo.jpg",
			Description: "Solid, dependable. He's here for you, but he needs very little in return. Bo is your boy.",
			Tags:        []string{"low_maintenance", "shady", "chill", "plant_assassin"},
		},
		{
			Name:        "Henrik",
			Image:       "Henrik.jpg",
			Description: "Henrik is over it. He will straight up bite anyone who comes near your desk.",
			Tags:        []string{"moody", "dramatic", "bright", "chaos"},
		},
		{
			Name:        "Magnus",
			Image:       "Magnus.jpg",
			Description: "He's fancy, but a little snippy. Definitely mean girl energy.",
			Tags:        []string{"high_maintenance", "bright", "dramatic"},
		},
		{
			Name:        "Sebastian",
			Image:       "Sebastian.jpg",
			Description: "Soft, elegant, happy to lounge out on your shelves with minimal light ('cause ew, sun damage!).",
			Tags:        []string{"low_maintenance", "shady", "classy"},
		},
		{
			Name:        "Melvin",
			Image:       "Melvin.jpg",
			Description: "Melvin might be plastic, but he isn't here to judge. You have better things to do, and he's not about to make you feel bad about it.",
			Tags:        []string{"plant_assassin", "chill", "no_fuss"},
		},
		{
			Name:        "Gertrude",
			Image:       "Gertrude.jpg",
			Description: "Absolutely gorgeous, but if you don't tell her she's pretty ten times a day she will collapse into a pile of brown leaves. Gertrude isn't easy, but she's worth the effort.",
			Tags:        []string{"high_maintenance", "elegant", "bright", "needy"},
		},
		{
			Name:        "Astrid",
			Image:       "Astrid.jpg",
			Description: "Surprisingly chill, Astrid doesn't want any drama.",
			Tags:        []string{"low_maintenance", "shady", "chill"},
		},
		{
			Name:        "Marta",
			Image:       "Marta.jpg",
			Description: "She might seem cool, but that's all a facade. Marta is about to snap if someone adds even one more thing to her plate today.",
			Tags:        []string{"moody", "shady", "dramatic", "chaos"},
		},
		{
			Name:        "Liv",
			Image:       "Liv.jpg",
			Description: "Liv is that girl. Unbothered, confident, we should all be a little more like Liv. She doesn't need you to make her look good, she's doing it all on her own.",
			Tags:        []string{"confident", "bright", "no_fuss"},
		},
		{
			Name:        "Sylvia",
			Image:       "Sylvia.jpg",
			Description: "Sylvia isn't needy, but maybe she should be. She ends all of her e-mails with 'No problem if not!'.",
			Tags:        []string{"low_maintenance", "chill", "shady", "passive"},
		},
	}

	if err := catalogRepo.ReplaceAll(ctx, plants); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	log.Printf("Seeded %d plants into %s.plants", len(plants), dbName)
}
