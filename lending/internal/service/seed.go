package service

type sampleBook struct {
	title, author, isbn, category string
}

// sampleCatalogue is inserted by SeedBooks, titles already present are skipped.
var sampleCatalogue = []sampleBook{
	{"The Quran: Translation and Commentary", "Various", "978-0000000101", "Islamic"},
	{"Introduction to Hadith", "M. Khan", "978-0000000102", "Islamic"},
	{"Islamic History Overview", "A. Rahman", "978-0000000103", "Islamic"},
	{"Contemporary Islamic Thought", "S. Ahmed", "978-0000000104", "Islamic"},
	{"Islamic Jurisprudence", "F. Malik", "978-0000000105", "Islamic"},
	{"Stories of the Prophets", "N. Karim", "978-0000000106", "Islamic"},

	{"Physics: Principles and Problems", "J. Walker", "978-0000000201", "Science"},
	{"Chemistry Essentials", "L. Chang", "978-0000000202", "Science"},
	{"Biology Today", "R. Peters", "978-0000000203", "Science"},
	{"Astronomy Basics", "K. Shah", "978-0000000204", "Science"},
	{"Environmental Science", "H. Gomez", "978-0000000205", "Science"},
	{"Introduction to Geology", "P. Singh", "978-0000000206", "Science"},
	{"Scientific Method and Research", "D. Clark", "978-0000000207", "Science"},

	{"Learning Python", "M. Lutz", "978-0000000301", "Software"},
	{"Clean Architecture", "R. Martin", "978-0000000302", "Software"},
	{"The Pragmatic Programmer", "Andrew Hunt", "978-0000000303", "Software"},
	{"Effective Java", "J. Bloch", "978-0000000304", "Software"},
	{"Fluent Python", "L. Ramalho", "978-0000000305", "Software"},
	{"Design Patterns", "E. Gamma", "978-0000000306", "Software"},
	{"Introduction to Algorithms", "T. Cormen", "978-0000000307", "Software"},
	{"Web Development with Flask", "S. Brown", "978-0000000308", "Software"},

	{"Bangla Grammar and Usage", "M. Rahman", "978-0000000401", "Bangla"},
	{"Bangla Literature: Classics", "Various", "978-0000000402", "Bangla"},
	{"Modern Bangla Poetry", "A. Islam", "978-0000000403", "Bangla"},
	{"Bangla Prose Anthology", "R. Choudhury", "978-0000000404", "Bangla"},
	{"Teach Yourself Bangla", "S. Banerjee", "978-0000000405", "Bangla"},
	{"Bangla for Beginners", "L. Hasan", "978-0000000406", "Bangla"},

	{"English Grammar in Use", "R. Murphy", "978-0000000501", "English"},
	{"English Literature: An Introduction", "J. Smith", "978-0000000502", "English"},
	{"Oxford Dictionary", "OUP", "978-0000000503", "English"},
	{"Creative Writing Basics", "E. Williams", "978-0000000504", "English"},
	{"English Comprehension", "H. Lewis", "978-0000000505", "English"},
	{"Conversation English", "D. Brown", "978-0000000506", "English"},
	{"English Vocabulary Builder", "S. Clark", "978-0000000507", "English"},

	{"Elementary Algebra", "G. Thomas", "978-0000000601", "Math"},
	{"Calculus I", "J. Stewart", "978-0000000602", "Math"},
	{"Discrete Mathematics", "R. Johnson", "978-0000000603", "Math"},
	{"Statistics and Probability", "L. Evans", "978-0000000604", "Math"},
	{"Linear Algebra", "G. Strang", "978-0000000605", "Math"},
	{"Number Theory Essentials", "A. N. Khan", "978-0000000606", "Math"},

	{"Art History Overview", "P. Miller", "978-0000000701", "Arts"},
	{"Drawing Techniques", "A. Lopez", "978-0000000702", "Arts"},
	{"Painting for Beginners", "C. Moore", "978-0000000703", "Arts"},
	{"Sculpture Essentials", "V. Rossi", "978-0000000704", "Arts"},
	{"Graphic Design Principles", "K. Hunter", "978-0000000705", "Arts"},
	{"Photography Basics", "L. Carter", "978-0000000706", "Arts"},

	{"Business Management", "P. Drucker", "978-0000000801", "Business"},
	{"Marketing 101", "S. Kotler", "978-0000000802", "Business"},
	{"Finance for Non-Finance", "R. Patel", "978-0000000803", "Business"},
	{"Entrepreneurship Guide", "M. Khan", "978-0000000804", "Business"},
}
