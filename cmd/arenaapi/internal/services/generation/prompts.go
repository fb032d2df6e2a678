package generation

// DefaultPrompts is the built-in prompt catalog. IDs equal slice positions.
var DefaultPrompts = []Prompt{
	{ID: 0, Prompt: "A futuristic cityscape with neon lights and flying cars, digital art style", Category: "futuristic", Style: "digital art"},
	{ID: 1, Prompt: "A serene mountain landscape at sunset with golden clouds, oil painting style", Category: "nature", Style: "oil painting"},
	{ID: 2, Prompt: "A cyberpunk warrior with glowing armor in a dark alley, concept art", Category: "cyberpunk", Style: "concept art"},
	{ID: 3, Prompt: "A magical forest with glowing mushrooms and fairy lights, fantasy art", Category: "fantasy", Style: "fantasy art"},
	{ID: 4, Prompt: "A steampunk airship flying over Victorian London, detailed illustration", Category: "steampunk", Style: "detailed illustration"},
	{ID: 5, Prompt: "A cute robot playing with a cat in a cozy room, cartoon style", Category: "cute", Style: "cartoon"},
	{ID: 6, Prompt: "A space station orbiting Earth with stars in background, sci-fi art", Category: "sci-fi", Style: "sci-fi art"},
	{ID: 7, Prompt: "A medieval castle on a hill with dragons flying overhead, fantasy", Category: "fantasy", Style: "fantasy"},
	{ID: 8, Prompt: "A modern abstract composition with geometric shapes and vibrant colors", Category: "abstract", Style: "modern"},
	{ID: 9, Prompt: "A peaceful garden with cherry blossoms and a small pond, watercolor style", Category: "nature", Style: "watercolor"},
	{ID: 10, Prompt: "A superhero in a dynamic pose with energy effects, comic book style", Category: "superhero", Style: "comic book"},
	{ID: 11, Prompt: "A cozy coffee shop interior with warm lighting and people, realistic", Category: "realistic", Style: "realistic"},
	{ID: 12, Prompt: "A mystical crystal cave with glowing crystals and magical atmosphere", Category: "fantasy", Style: "mystical"},
	{ID: 13, Prompt: "A vintage car driving through a desert landscape at golden hour", Category: "vintage", Style: "realistic"},
	{ID: 14, Prompt: "A fantasy character with magical staff and flowing robes, RPG art", Category: "fantasy", Style: "RPG art"},
}
