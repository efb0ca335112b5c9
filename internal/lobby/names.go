package lobby

import (
	"math/rand/v2"
)

var adjectives = []string{
	"brave", "calm", "clever", "eager", "fancy", "gentle", "happy", "jolly",
	"kind", "lively", "lucky", "merry", "mighty", "nimble", "proud", "quick",
	"quiet", "rapid", "shy", "silly", "sleepy", "swift", "tiny", "witty",
}

var animals = []string{
	"badger", "beaver", "bison", "camel", "crane", "eagle", "ferret", "gecko",
	"heron", "koala", "lemur", "lynx", "moose", "otter", "owl", "panda",
	"puffin", "quokka", "raven", "seal", "sloth", "tapir", "walrus", "yak",
}

// RandomName - returns an adjective-animal pair such as "brave-otter".
func RandomName() string {
	return adjectives[rand.IntN(len(adjectives))] + "-" + animals[rand.IntN(len(animals))]
}
