package vocabulary

// defaultSections is the instrument registry used when configuration declares
// none. Order matters: sections whose aliases contain another section's alias
// ("English Horn" vs "Horn", "Bass Clarinet" vs "Clarinet", "Baritone Sax" vs
// "Baritone", "Bass Guitar" vs "Guitar") are registered first.
var defaultSections = []Section{
	{Name: "Oboe", FolderID: "1M_IPSFni_L5dqm8_-S07WEPppjU98BhO", Aliases: []string{"English Horn", "Cor Anglais", "Oboes", "Oboe"}},
	{Name: "Horn", FolderID: "1lv4I1CBe5TKm3PGl3jQJi26RKp2sWMI9", Aliases: []string{"French Horns", "French Horn", "Horns in F", "Horn in F", "Horn in Bb", "F. Horn", "F Horn", "Horns", "Horn"}},
	{Name: "Trumpet", FolderID: "1kGZ8Hr3eTQUIGFwZwuJICOaS2Ih7tEe4", Aliases: []string{"Trumpets", "Trumpet in Bb", "Trumpet", "Cornet", "Flugelhorn"}},
	{Name: "Sax", FolderID: "1IfvHMGccSvVFoH-FsokhOn4TJvOAGS_t", Aliases: []string{"Alto Sax", "Tenor Sax", "Baritone Sax", "Soprano Sax", "Saxophone", "Sax"}},
	{Name: "Lower Brass", FolderID: "155Tr9gLrSHgbOopag7A6u6x4lVjhAevK", Aliases: []string{"Lower Brass", "Bass Trombone", "Trombones", "Trombone", "Euphonium", "Baritone", "Tuba"}},
	{Name: "Bass Clarinet", FolderID: "16PJz8yAjAABtd9tQbV-UzA8rwVr5Q6yg", Aliases: []string{"Bass Clarinet", "B. Cl"}},
	{Name: "Clarinet", FolderID: "1itaYOezy66f61j20n-H2VBzvpexBjhaR", Aliases: []string{"Clarinet in Bb", "Bb Clarinet", "Clarinets", "Clarinet"}},
	{Name: "Bassoon", FolderID: "1P7pfqbbriKkZKheEE3hArfweOnTpJJnA", Aliases: []string{"Contrabassoon", "Bassoons", "Bassoon"}},
	{Name: "Flutes", FolderID: "1j7_vN0_uEBWM5aLQXFgwv7yJr56E5wPJ", Aliases: []string{"Piccolo", "Flutes", "Flute"}},
	{Name: "Whistle", FolderID: "1tIe7biSnbb9OrbYGmavP3ETXlBYq2fF9", Aliases: []string{"Tin Whistle", "Low Whistle", "Whistle"}},
	{Name: "Electric Guitar", FolderID: "1bjxILXC8q7nfmJs0YsGS_HmMpXbFHXe1", Aliases: []string{"Electric Guitar", "Elec. Guitar", "E. Guitar"}},
	{Name: "Electric Bass", FolderID: "1SFeiD3MPNbIT-dMQohDpAEeRY3zLTybj", Aliases: []string{"Electric Bass", "Bass Guitar", "E. Bass"}},
	{Name: "Acoustic Guitar", FolderID: "1EqzHK7zQ0rl06A4LalHjjzeXehqy3t9x", Aliases: []string{"Acoustic Guitar", "A. Guitar", "Guitar"}},
	{Name: "Cello", FolderID: "1VAVlL5Rk03q0y5tOdocpW6lxLZtdx_FA", Aliases: []string{"Violoncello", "Cellos", "Cello"}},
	{Name: "Bass", FolderID: "1lIK66u_gvYIovKOEwEyvslou_LK-RYYG", Aliases: []string{"Double Bass", "String Bass", "Upright Bass", "Contrabass", "Bass"}},
	{Name: "Viola", FolderID: "1TxxlNJMbg31obflDW4Ub17KUqRKPlmsh", Aliases: []string{"Violas", "Viola"}},
	{Name: "Percussion", FolderID: "1p0ET_m81s8Q0tTF06rrEC_dor6DdhZXN", Aliases: []string{"Percussion", "Drum Set", "Drums", "Timpani", "Mallets", "Glockenspiel"}},
	{Name: "Piano", FolderID: "1joIJOxEk0dPAiLiHB89MMPxRRjcXJHsi", Aliases: []string{"Piano"}},
	{Name: "Keys", FolderID: "1irxzjpqUVclbGrpuxNwZZ07TTHJ5mJq2", Aliases: []string{"Keyboard", "Keys", "Synth", "Organ"}},
	{Name: "Violin2", FolderID: "1oDMXOqeimW19rUdYXnAW9NoQmxymOnCb", Aliases: []string{"Violin II", "Violin 2", "2nd Violin", "Violin2"}},
	{Name: "Violin1", FolderID: "1rJgi1kTIgIHurL7wf11-MxJv5Krysdvd", Aliases: []string{"Violin I", "Violin 1", "1st Violin", "Violin1"}},
	{Name: "Vocals", FolderID: "1FhrcsFNHZLwLHFtsgS5ySIkKwSIOXTJ9", Aliases: []string{"Vocals", "Vocal", "Voice", "Choir"}},
}

// DefaultSections returns a copy of the built-in registry.
func DefaultSections() []Section {
	out := make([]Section, len(defaultSections))
	for i, sec := range defaultSections {
		out[i] = cloneSection(sec)
	}
	return out
}

// Default returns the built-in vocabulary.
func Default() *Vocabulary {
	return MustNew(defaultSections)
}
