package game

var easyWords = []string{
	"cat", "dog", "sun", "moon", "tree", "house", "car", "book", "phone", "chair",
	"table", "door", "window", "flower", "bird", "fish", "star", "cloud", "rain", "snow",
	"fire", "water", "grass", "mountain", "river", "ocean", "beach", "island", "bridge", "road",
	"apple", "banana", "pizza", "cake", "cookie", "milk", "bread", "cheese", "egg", "coffee",
	"hat", "shoe", "shirt", "pants", "dress", "jacket", "glasses", "watch", "ring", "bag",
	"ball", "bike", "plane", "train", "boat", "bus", "truck", "helicopter", "rocket", "robot",
}

var mediumWords = []string{
	"elephant", "giraffe", "butterfly", "tornado", "volcano", "earthquake", "dinosaur", "pyramid",
	"castle", "knight", "dragon", "wizard", "vampire", "zombie", "superhero", "villain",
	"telescope", "microscope", "computer", "keyboard", "headphones", "camera", "television", "radio",
	"guitar", "piano", "drums", "violin", "trumpet", "saxophone", "orchestra", "concert",
	"hospital", "doctor", "nurse", "patient", "ambulance", "medicine", "surgery", "bandage",
	"teacher", "student", "classroom", "homework", "examination", "graduation", "library", "university",
	"restaurant", "waiter", "chef", "menu", "kitchen", "recipe", "ingredient", "dessert",
	"airport", "passport", "luggage", "tourist", "vacation", "hotel", "adventure", "journey",
}

var hardWords = []string{
	"artificial intelligence", "global warming", "social media", "virtual reality", "time machine",
	"black hole", "solar system", "northern lights", "great wall of china", "statue of liberty",
	"mount everest", "bermuda triangle", "atlantis", "stonehenge", "easter island",
	"beethoven", "shakespeare", "mona lisa", "van gogh", "einstein", "newton", "darwin",
	"photosynthesis", "evolution", "gravity", "democracy", "capitalism", "revolution", "constitution",
	"meditation", "yoga", "mindfulness", "philosophy", "psychology", "sociology", "anthropology",
	"cryptocurrency", "blockchain", "quantum computing", "genetic engineering", "nanotechnology",
	"renewable energy", "climate change", "deforestation", "endangered species", "pollution",
	"archaeology", "hieroglyphics", "renaissance", "industrial revolution", "world war", "cold war",
	"stock market", "inflation", "recession", "entrepreneurship", "innovation", "sustainability",
}
