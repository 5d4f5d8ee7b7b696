package kinship

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/kintree/pkg/person"
)

// Classify returns the neutral label for a blood relationship where A is up
// generations below the common ancestor and B is down generations below it.
// Classify(0, 0) is "self".
func Classify(up, down int) string {
	switch {
	case up < 0 || down < 0:
		return ""
	case up == 0 && down == 0:
		return "self"
	case up == 0:
		return lineal(down, "parent")
	case down == 0:
		return lineal(up, "child")
	case up == 1 && down == 1:
		return "sibling"
	case up == 1:
		return greats(down-2) + "aunt/uncle"
	case down == 1:
		return greats(up-2) + "niece/nephew"
	default:
		degree, removed := cousin(up, down)
		return ordinalWord(degree) + " cousin" + removedSuffix(removed)
	}
}

func cousin(up, down int) (degree, removed int) {
	degree = min(up, down) - 1
	removed = up - down
	if removed < 0 {
		removed = -removed
	}
	return degree, removed
}

func lineal(n int, base string) string {
	if n == 1 {
		return base
	}
	return greats(n-2) + "grand" + base
}

func greats(n int) string {
	switch {
	case n <= 0:
		return ""
	case n == 1:
		return "great-"
	case n == 2:
		return "great-great-"
	default:
		return strconv.Itoa(n) + "x great-"
	}
}

func removedSuffix(n int) string {
	switch n {
	case 0:
		return ""
	case 1:
		return ", once removed"
	case 2:
		return ", twice removed"
	default:
		return ", " + strconv.Itoa(n) + " times removed"
	}
}

var ordinalWords = [...]string{"", "first", "second", "third", "fourth", "fifth", "sixth", "seventh", "eighth", "ninth", "tenth"}

func ordinalWord(n int) string {
	if n > 0 && n < len(ordinalWords) {
		return ordinalWords[n]
	}
	return strconv.Itoa(n) + ordinal(n)
}

func ordinal(num int) string {
	switch num % 100 {
	case 11, 12, 13:
		return "th"
	default:
		switch num % 10 {
		case 1:
			return "st"
		case 2:
			return "nd"
		case 3:
			return "rd"
		default:
			return "th"
		}
	}
}

// gendered terms by neutral suffix, longest first.
var genderedTerms = []struct {
	neutral, male, female string
}{
	{"niece/nephew", "nephew", "niece"},
	{"aunt/uncle", "uncle", "aunt"},
	{"sibling", "brother", "sister"},
	{"parent", "father", "mother"},
	{"spouse", "husband", "wife"},
	{"child", "son", "daughter"},
}

// Gender specializes a neutral label by the subject's sex. Unknown sex and
// labels without gendered forms are returned unchanged.
func Gender(label string, sex person.Sex) string {
	if sex == person.SexUnknown {
		return label
	}
	base, suffix := label, ""
	if b, ok := strings.CutSuffix(label, "-in-law"); ok {
		base, suffix = b, "-in-law"
	}
	for _, t := range genderedTerms {
		if stem, ok := strings.CutSuffix(base, t.neutral); ok {
			word := t.male
			if sex == person.SexFemale {
				word = t.female
			}
			return stem + word + suffix
		}
	}
	return label
}

func describe(name, label, other string) string {
	return fmt.Sprintf("%s is the %s of %s", name, label, other)
}
