package rows

const (
	SeedSize         = 24
	SeedMediaPath    = "C:/Users/hoa"
	SeedSelectedText = "Selected Text"
	// SeedSelectedID is the row selected when a session starts.
	SeedSelectedID int64 = 2
)

// Seed returns the placeholder table used when no cached snapshot exists.
// Seed rows are never sent to the row service.
func Seed() []Row {
	seed := make([]Row, SeedSize)
	for i := range seed {
		seed[i] = Row{
			ID:        int64(i + 1),
			MediaPath: SeedMediaPath,
		}
		if i == 1 {
			seed[i].Text = SeedSelectedText
		}
	}
	return seed
}
