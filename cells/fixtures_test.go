package cells

import (
	"time"

	"github.com/javajack/xlnest/header"
)

type author struct {
	ID        int64
	FirstName string
	LastName  string
}

type lender struct {
	ID        int64
	FirstName string
	LastName  string
}

type book struct {
	ID          int64
	Name        string
	ReleaseDate time.Time
	Author      *author
	Lenders     []lender
}

// bookSchema holds the Book / Author / Lender headers and their fields.
type bookSchema struct {
	root, author, lender *header.Header
	fields               Fields
}

func newBookSchema() *bookSchema {
	bookID, bookName, release := header.Leaf("BOOK_ID"), header.Leaf("BOOK_NAME"), header.Leaf("RELEASE_DATE")
	authorID, authorFirst, authorLast := header.Leaf("AUTHOR_ID"), header.Leaf("AUTHOR_FIRST_NAME"), header.Leaf("AUTHOR_LAST_NAME")
	lenderID, lenderFirst, lenderLast := header.Leaf("LENDER_ID"), header.Leaf("LENDER_FIRST_NAME"), header.Leaf("LENDER_LAST_NAME")

	s := &bookSchema{
		author: header.Group("Author", authorID, authorFirst, authorLast),
		lender: header.Group("Lender", lenderID, lenderFirst, lenderLast),
	}
	s.root = header.Group("Book", bookID, bookName, release, s.author, s.lender)
	s.fields = Fields{
		bookID:      MustPath("ID", Single),
		bookName:    MustPath("Name", Single),
		release:     ValueOf("ReleaseDate", func(b book) time.Time { return b.ReleaseDate }),
		s.author:    MustPath("Author", Single),
		authorID:    MustPath("ID", Single),
		authorFirst: MustPath("FirstName", Single),
		authorLast:  MustPath("LastName", Single),
		s.lender:    ManyOf("Lenders", func(b book) []lender { return b.Lenders }),
		lenderID:    MustPath("ID", Single),
		lenderFirst: MustPath("FirstName", Single),
		lenderLast:  MustPath("LastName", Single),
	}
	return s
}

func sampleBooks() []any {
	return []any{
		book{
			ID: 1, Name: "BOOK_TEST_NAME_1", ReleaseDate: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
			Author: &author{ID: 1, FirstName: "AUTHOR_TEST_FNAME_1", LastName: "AUTHOR_TEST_LNAME_1"},
			Lenders: []lender{
				{ID: 1, FirstName: "LENDER_TEST_FNAME_1", LastName: "LENDER_TEST_LNAME_1"},
				{ID: 2, FirstName: "LENDER_TEST_FNAME_2", LastName: "LENDER_TEST_LNAME_2"},
			},
		},
		book{
			ID: 2, Name: "BOOK_TEST_NAME_2", ReleaseDate: time.Date(2010, 12, 12, 0, 0, 0, 0, time.UTC),
			Author: &author{ID: 2, FirstName: "AUTHOR_TEST_FNAME_2", LastName: "AUTHOR_TEST_LNAME_2"},
			Lenders: []lender{
				{ID: 3, FirstName: "LENDER_TEST_FNAME_3", LastName: "LENDER_TEST_LNAME_3"},
				{ID: 4, FirstName: "LENDER_TEST_FNAME_4", LastName: "LENDER_TEST_LNAME_4"},
				{ID: 5, FirstName: "LENDER_TEST_FNAME_5", LastName: "LENDER_TEST_LNAME_5"},
			},
		},
	}
}

func cellValues(b DataBlock) []any {
	out := make([]any, len(b.Cells()))
	for i, c := range b.Cells() {
		out[i] = c.Value()
	}
	return out
}
