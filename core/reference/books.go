package reference

// fallbackBooks is the built-in catalog used when the external book
// catalog cannot be fetched. It covers the 66 canonical books plus
// Roman-numeral name variants for the numbered ones ("I Coríntios" as
// well as "1 Coríntios").
//
// Insertion order matters: entries are registered front to back and a
// later entry overwrites an earlier one when their normalized keys
// collide. The table is ordered Old Testament first so that "João"
// (NT) wins the "jo" key over "Jó" (OT); the exact accented form "Jó"
// still resolves verbatim.
var fallbackBooks = []CatalogBook{
	// Old Testament
	{Abbrev: "Gn", Name: "Gênesis"},
	{Abbrev: "Ex", Name: "Êxodo"},
	{Abbrev: "Lv", Name: "Levítico"},
	{Abbrev: "Nm", Name: "Números"},
	{Abbrev: "Dt", Name: "Deuteronômio"},
	{Abbrev: "Js", Name: "Josué"},
	{Abbrev: "Jz", Name: "Juízes"},
	{Abbrev: "Rt", Name: "Rute"},
	{Abbrev: "1Sm", Name: "1 Samuel"},
	{Abbrev: "1Sm", Name: "I Samuel"},
	{Abbrev: "2Sm", Name: "2 Samuel"},
	{Abbrev: "2Sm", Name: "II Samuel"},
	{Abbrev: "1Rs", Name: "1 Reis"},
	{Abbrev: "1Rs", Name: "I Reis"},
	{Abbrev: "2Rs", Name: "2 Reis"},
	{Abbrev: "2Rs", Name: "II Reis"},
	{Abbrev: "1Cr", Name: "1 Crônicas"},
	{Abbrev: "1Cr", Name: "I Crônicas"},
	{Abbrev: "2Cr", Name: "2 Crônicas"},
	{Abbrev: "2Cr", Name: "II Crônicas"},
	{Abbrev: "Ed", Name: "Esdras"},
	{Abbrev: "Ne", Name: "Neemias"},
	{Abbrev: "Et", Name: "Ester"},
	{Abbrev: "Jó", Name: "Jó"},
	{Abbrev: "Sl", Name: "Salmos"},
	{Abbrev: "Pv", Name: "Provérbios"},
	{Abbrev: "Ec", Name: "Eclesiastes"},
	{Abbrev: "Ct", Name: "Cântico dos Cânticos"},
	{Abbrev: "Is", Name: "Isaías"},
	{Abbrev: "Jr", Name: "Jeremias"},
	{Abbrev: "Lm", Name: "Lamentações"},
	{Abbrev: "Ez", Name: "Ezequiel"},
	{Abbrev: "Dn", Name: "Daniel"},
	{Abbrev: "Os", Name: "Oseias"},
	{Abbrev: "Jl", Name: "Joel"},
	{Abbrev: "Am", Name: "Amós"},
	{Abbrev: "Ob", Name: "Obadias"},
	{Abbrev: "Jn", Name: "Jonas"},
	{Abbrev: "Mq", Name: "Miqueias"},
	{Abbrev: "Na", Name: "Naum"},
	{Abbrev: "Hc", Name: "Habacuque"},
	{Abbrev: "Sf", Name: "Sofonias"},
	{Abbrev: "Ag", Name: "Ageu"},
	{Abbrev: "Zc", Name: "Zacarias"},
	{Abbrev: "Ml", Name: "Malaquias"},

	// New Testament
	{Abbrev: "Mt", Name: "Mateus"},
	{Abbrev: "Mc", Name: "Marcos"},
	{Abbrev: "Lc", Name: "Lucas"},
	{Abbrev: "Jo", Name: "João"},
	{Abbrev: "At", Name: "Atos"},
	{Abbrev: "Rm", Name: "Romanos"},
	{Abbrev: "1Co", Name: "1 Coríntios"},
	{Abbrev: "1Co", Name: "I Coríntios"},
	{Abbrev: "2Co", Name: "2 Coríntios"},
	{Abbrev: "2Co", Name: "II Coríntios"},
	{Abbrev: "Gl", Name: "Gálatas"},
	{Abbrev: "Ef", Name: "Efésios"},
	{Abbrev: "Fp", Name: "Filipenses"},
	{Abbrev: "Cl", Name: "Colossenses"},
	{Abbrev: "1Ts", Name: "1 Tessalonicenses"},
	{Abbrev: "1Ts", Name: "I Tessalonicenses"},
	{Abbrev: "2Ts", Name: "2 Tessalonicenses"},
	{Abbrev: "2Ts", Name: "II Tessalonicenses"},
	{Abbrev: "1Tm", Name: "1 Timóteo"},
	{Abbrev: "1Tm", Name: "I Timóteo"},
	{Abbrev: "2Tm", Name: "2 Timóteo"},
	{Abbrev: "2Tm", Name: "II Timóteo"},
	{Abbrev: "Tt", Name: "Tito"},
	{Abbrev: "Fm", Name: "Filemom"},
	{Abbrev: "Hb", Name: "Hebreus"},
	{Abbrev: "Tg", Name: "Tiago"},
	{Abbrev: "1Pe", Name: "1 Pedro"},
	{Abbrev: "1Pe", Name: "I Pedro"},
	{Abbrev: "2Pe", Name: "2 Pedro"},
	{Abbrev: "2Pe", Name: "II Pedro"},
	{Abbrev: "1Jo", Name: "1 João"},
	{Abbrev: "1Jo", Name: "I João"},
	{Abbrev: "2Jo", Name: "2 João"},
	{Abbrev: "2Jo", Name: "II João"},
	{Abbrev: "3Jo", Name: "3 João"},
	{Abbrev: "3Jo", Name: "III João"},
	{Abbrev: "Jd", Name: "Judas"},
	{Abbrev: "Ap", Name: "Apocalipse"},
}
