package invoice

import "github.com/shopspring/decimal"

// Example returns the demonstration document. Values are fixed, so two calls
// yield equal invoices.
func Example() Invoice {
	return Invoice{
		InvoiceNumber: "123",
		FromName:      "El Mehdi Nassiri\n Hay Mohamadi\nMaroc, Casablanca 20000",
		PaymentTerms:  "Projet à prix fixe",
		Currency:      "MAD",
		ToName:        "Ahmed taha alami\n sidi bernoussi.\nMaroc, Casablanca 20001",
		Date:          "2020-06-06",
		DueDate:       "2020-06-26",
		LineItems: []LineItem{
			{
				ID:          "example-1",
				Description: "Front End React js #1",
				Quantity:    decimal.NewFromInt(1),
				Rate:        decimal.RequireFromString("1.5"),
			},
			{
				ID:          "example-2",
				Description: "Blockchain Integration #2",
				Quantity:    decimal.NewFromInt(2),
				Rate:        decimal.RequireFromString("2.5"),
			},
		},
		Notes: "ce projet a fait par moi el mehdi nassiri en tant que Freelancer",
		Terms: "Le paiement doit être effectué via PayPal, Cih bank",
	}
}
