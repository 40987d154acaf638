package sheet

func t(name, a, b, c string) Talent {
	return Talent{Name: name, Attributes: [3]string{a, b, c}}
}

var defaultTalents = map[string][]Talent{
	"body": {
		t("Fliegen", "MU", "IN", "GE"),
		t("Gaukeleien", "MU", "CH", "FF"),
		t("Klettern", "MU", "GE", "KK"),
		t("Körperbeherrschung", "GE", "GE", "KO"),
		t("Kraftakt", "KO", "KK", "KK"),
		t("Reiten", "CH", "GE", "KK"),
		t("Schwimmen", "GE", "KO", "KK"),
		t("Selbstbeherrschung", "MU", "MU", "KO"),
		t("Singen", "KL", "CH", "KO"),
		t("Sinnesschärfe", "KL", "IN", "IN"),
		t("Tanzen", "KL", "CH", "GE"),
		t("Taschendiebstahl", "MU", "FF", "GE"),
		t("Verbergen", "MU", "IN", "GE"),
		t("Zechen", "KL", "KO", "KK"),
	},
	"social": {
		t("Bekehren und Überzeugen", "MU", "KL", "CH"),
		t("Betören", "MU", "CH", "CH"),
		t("Einschüchtern", "MU", "IN", "CH"),
		t("Etikette", "KL", "IN", "CH"),
		t("Gassenwissen", "KL", "IN", "CH"),
		t("Menschenkenntnis", "KL", "IN", "CH"),
		t("Überreden", "MU", "IN", "CH"),
		t("Verkleiden", "IN", "CH", "GE"),
		t("Willenskraft", "MU", "IN", "CH"),
	},
	"nature": {
		t("Fährtensuchen", "MU", "IN", "GE"),
		t("Fesseln", "KL", "FF", "KK"),
		t("Fischen/Angeln", "FF", "GE", "KO"),
		t("Orientierung", "KL", "IN", "IN"),
		t("Pflanzenkunde", "KL", "FF", "KO"),
		t("Tierkunde", "MU", "MU", "CH"),
		t("Wildnisleben", "MU", "GE", "KO"),
	},
	"knowledge": {
		t("Brett- und Glücksspiel", "KL", "KL", "IN"),
		t("Geographie", "KL", "KL", "IN"),
		t("Geschichtswissen", "KL", "KL", "IN"),
		t("Götter und Kulte", "KL", "KL", "IN"),
		t("Kriegskunst", "MU", "KL", "IN"),
		t("Magiekunde", "KL", "KL", "IN"),
		t("Mechanik", "KL", "KL", "FF"),
		t("Rechnen", "KL", "KL", "IN"),
		t("Rechtskunde", "KL", "KL", "IN"),
		t("Sagen und Legenden", "KL", "KL", "IN"),
		t("Sphärenkunde", "KL", "KL", "IN"),
		t("Sternenkunde", "KL", "KL", "IN"),
	},
	"craft": {
		t("Alchimie", "MU", "KL", "FF"),
		t("Boote und Schiffe", "FF", "GE", "KK"),
		t("Fahrzeuge", "CH", "FF", "KO"),
		t("Handel", "KL", "IN", "CH"),
		t("Heilkunde Gift", "MU", "KL", "IN"),
		t("Heilkunde Krankheiten", "MU", "IN", "KO"),
		t("Heilkunde Seele", "IN", "CH", "KO"),
		t("Heilkunde Wunden", "KL", "FF", "FF"),
		t("Holzbearbeitung", "FF", "GE", "KK"),
		t("Lebensmittelbearbeitung", "IN", "FF", "FF"),
		t("Lederbearbeitung", "FF", "GE", "KO"),
		t("Malen und Zeichnen", "IN", "FF", "FF"),
		t("Metallbearbeitung", "FF", "KO", "KK"),
		t("Musizieren", "CH", "FF", "KO"),
		t("Schlösserknacken", "IN", "FF", "FF"),
		t("Steinbearbeitung", "FF", "FF", "KK"),
		t("Stoffbearbeitung", "KL", "FF", "FF"),
	},
}
