package lexicon

// englishStopWords is the NLTK English stop word list with apostrophes removed,
// matching how the query cleaner splits contractions.
var englishStopWords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "your", "yours",
	"yourself", "yourselves", "he", "him", "his", "himself", "she", "her", "hers", "herself",
	"it", "its", "itself", "they", "them", "their", "theirs", "themselves", "what", "which",
	"who", "whom", "this", "that", "these", "those", "am", "is", "are", "was", "were", "be",
	"been", "being", "have", "has", "had", "having", "do", "does", "did", "doing", "a", "an",
	"the", "and", "but", "if", "or", "because", "as", "until", "while", "of", "at", "by",
	"for", "with", "about", "against", "between", "into", "through", "during", "before",
	"after", "above", "below", "to", "from", "up", "down", "in", "out", "on", "off", "over",
	"under", "again", "further", "then", "once", "here", "there", "when", "where", "why",
	"how", "all", "any", "both", "each", "few", "more", "most", "other", "some", "such", "no",
	"nor", "not", "only", "own", "same", "so", "than", "too", "very", "s", "t", "can", "will",
	"just", "don", "should", "now", "d", "ll", "m", "o", "re", "ve", "y", "ain", "aren",
	"couldn", "didn", "doesn", "hadn", "hasn", "haven", "isn", "ma", "mightn", "mustn",
	"needn", "shan", "shouldn", "wasn", "weren", "won", "wouldn",
}

// DefaultData returns a fresh copy of the built-in tables.
func DefaultData() Data {
	return Data{
		StopWords: append([]string(nil), englishStopWords...),
		Abbreviations: map[string]string{
			"ai":  "artificial intelligence",
			"ml":  "machine learning",
			"nlp": "natural language processing",
			"dl":  "deep learning",
			"cv":  "computer vision",
			"rl":  "reinforcement learning",
			"nn":  "neural network",
			"cnn": "convolutional neural network",
			"rnn": "recurrent neural network",
		},
		Synonyms: map[string][]string{
			"coding":      {"programming", "computer science", "software"},
			"code":        {"programming", "computer science"},
			"climate":     {"environmental", "climate change", "global warming"},
			"environment": {"environmental", "climate", "ecology"},
			"film":        {"cinema", "movie"},
			"movies":      {"film", "cinema"},
		},
		STEM: SubjectData{
			DepartmentCodes: []string{
				"COSC", "PHYS", "CHEM", "BIOL", "BCBP", "NEUR", "GEOL", "ENST", "MATH", "STAT", "ASTR",
			},
			DepartmentNames: []string{
				"computer science", "physics", "chemistry", "biology", "biochemistry and biophysics",
				"neuroscience", "geology", "environmental studies", "mathematics", "statistics",
				"astronomy", "mathematics and statistics", "physics and astronomy",
			},
			Keywords: []string{
				"machine", "learning", "algorithm", "computer", "programming", "data",
				"mathematics", "calculus", "algebra", "physics", "chemistry", "biology",
				"engineering", "statistics", "natural",
			},
		},
		SocialScience: SubjectData{
			DepartmentCodes: []string{"ANTH", "SOCI", "SWAG", "ECON", "POSC", "EDST", "LJST", "PSYC"},
			DepartmentNames: []string{
				"anthropology and sociology", "anthropology", "sociology", "economics",
				"political science", "sexuality, women's and gender studies", "educational studies",
				"law, jurisprudence, and social thought", "psychology",
			},
			QueryCues: []string{"social science", "sociology", "anthropology", "gender", "sexuality"},
			Indicators: []string{
				"social science", "sociology", "anthropology", "gender studies", "women studies",
				"sexuality", "educational equity", "feminist studies",
			},
		},
		IntroCues: []string{"intro", "introduction", "beginner", "start"},
	}
}
