package domain

// Recipe is a single row of the dataset. Rows are immutable and have no
// identity beyond their position in the dataset.
type Recipe struct {
	// Title is the dish name.
	Title string

	// Ingredients is the serialized ingredient list as stored in the
	// dataset (a quoted, bracketed list in the reference data).
	Ingredients string

	// Directions is the serialized preparation steps as stored in the
	// dataset.
	Directions string
}

// Page is the result of one scan invocation: the matches collected before
// the page filled or the dataset ended, in dataset order.
type Page struct {
	// Rows are the matching recipes, in dataset order.
	Rows []Recipe

	// Cursor is the position of the next row to evaluate. Feeding it
	// back into the scanner continues the enumeration with no duplicates
	// and no omissions.
	Cursor Cursor

	// Exhausted is true when the dataset ended with no further matches
	// beyond the ones in Rows.
	Exhausted bool
}
