// Command searchserver runs a demo contact search server over an in-memory
// sqlite database seeded with sample data.
package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	contactql "github.com/flowline/contactql"
	"github.com/flowline/contactql/internal/observability"
	"github.com/flowline/contactql/internal/store"
	"github.com/shopspring/decimal"
)

func main() {
	st, err := store.Open(":memory:")
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	if err := st.Migrate(); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
	if err := seed(st); err != nil {
		log.Fatal("Failed to seed database:", err)
	}

	searcher := contactql.NewSearcher(st.DB(),
		contactql.WithObservability(observability.WithServerTiming()),
	)

	fmt.Println("Search server starting on :8080")
	fmt.Println("Try:")
	fmt.Println(`  http://localhost:8080/search?org=1&q=bob`)
	ageExample := `  http://localhost:8080/search?org=1&q=age+%3E+30`
	fmt.Println(ageExample)
	fmt.Println(`  http://localhost:8080/search?org=1&q=joined+%3D+2025-03-01`)

	http.Handle("/search", searcher.Handler())
	if err := http.ListenAndServe(":8080", nil); err != nil {
		log.Fatal("Server failed:", err)
	}
}

func seed(st *store.Store) error {
	db := st.DB()

	org := &store.Org{ID: 1, Name: "Demo", Timezone: "UTC"}
	if err := db.Create(org).Error; err != nil {
		return err
	}

	fields := []*store.ContactField{
		{ID: 1, OrgID: 1, Key: "age", Label: "Age", ValueType: "N", IsActive: true},
		{ID: 2, OrgID: 1, Key: "joined", Label: "Joined", ValueType: "D", IsActive: true},
	}
	if err := db.Create(&fields).Error; err != nil {
		return err
	}

	contacts := []*store.Contact{
		{ID: 1, OrgID: 1, Name: "Bob Marley", IsActive: true, CreatedOn: time.Now()},
		{ID: 2, OrgID: 1, Name: "Alice Cooper", IsActive: true, CreatedOn: time.Now()},
	}
	if err := db.Create(&contacts).Error; err != nil {
		return err
	}

	urns := []*store.ContactURN{
		{ContactID: 1, OrgID: 1, Scheme: "tel", Path: "+250788382382"},
		{ContactID: 2, OrgID: 1, Scheme: "twitter", Path: "alicecooper"},
	}
	if err := db.Create(&urns).Error; err != nil {
		return err
	}

	joined := time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC)
	values := []*store.Value{
		{ContactID: 1, ContactFieldID: 1, OrgID: 1, DecimalValue: decimal.NewNullDecimal(decimal.NewFromInt(42))},
		{ContactID: 2, ContactFieldID: 1, OrgID: 1, DecimalValue: decimal.NewNullDecimal(decimal.NewFromInt(28))},
		{ContactID: 1, ContactFieldID: 2, OrgID: 1, DatetimeValue: &joined},
	}
	return db.Create(&values).Error
}
