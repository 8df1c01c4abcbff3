package billing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nurpe/faktura/internal/model"
)

const (
	InvoicePrefix  = "RE"
	CustomerPrefix = "KD"
	PersonPrefix   = "KP"

	// FirstCustomerNumber is used when no usable customer number exists yet.
	FirstCustomerNumber = 1001

	personNumberOffset = 1000
)

// InvoiceNumberPrefix returns the pattern prefix shared by all invoices of a year.
func InvoiceNumberPrefix(year int) string {
	return fmt.Sprintf("%s-%d-", InvoicePrefix, year)
}

// NextInvoiceNumber formats the sequence that follows count existing invoices
// of the same year, e.g. RE-2026-004 after three.
func NextInvoiceNumber(year int, count int64) string {
	if count < 0 {
		count = 0
	}
	return fmt.Sprintf("%s%03d", InvoiceNumberPrefix(year), count+1)
}

// ParseInvoiceSequence extracts the running number from "RE-<year>-<seq>".
func ParseInvoiceSequence(number string, year int) (int64, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(number), InvoiceNumberPrefix(year))
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ParseCustomerNumber extracts n from "KD-<n>". Anything else is rejected.
func ParseCustomerNumber(number string) (int, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(number), CustomerPrefix+"-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// NextCustomerNumber increments the most recently issued customer number.
// An empty or malformed latest number restarts at KD-1001.
func NextCustomerNumber(latest string) string {
	n, ok := ParseCustomerNumber(latest)
	if !ok {
		return formatCustomerNumber(FirstCustomerNumber)
	}
	return formatCustomerNumber(n + 1)
}

// PersonNumber derives the number of the person at index (0-based) under a
// contact: KD-1043 gives KP-2043, KP-2044, ...
func PersonNumber(customerNumber string, index int) string {
	n, ok := ParseCustomerNumber(customerNumber)
	if !ok {
		n = FirstCustomerNumber
	}
	return fmt.Sprintf("%s-%d", PersonPrefix, n+personNumberOffset+index)
}

// NumberPersons fills in missing person numbers and marks the first person as
// primary. Numbers that are already assigned are kept, and a derived number
// that one of them already uses is skipped.
func NumberPersons(customerNumber string, persons []model.ContactPerson) []model.ContactPerson {
	used := make(map[string]bool, len(persons))
	for _, person := range persons {
		if number := strings.TrimSpace(person.PersonNumber); number != "" {
			used[number] = true
		}
	}

	result := make([]model.ContactPerson, len(persons))
	next := 0
	for i, person := range persons {
		if strings.TrimSpace(person.PersonNumber) == "" {
			if next < i {
				next = i
			}
			number := PersonNumber(customerNumber, next)
			for used[number] {
				next++
				number = PersonNumber(customerNumber, next)
			}
			used[number] = true
			person.PersonNumber = number
			next++
		}
		person.IsPrimary = i == 0
		result[i] = person
	}
	return result
}

func formatCustomerNumber(n int) string {
	return fmt.Sprintf("%s-%d", CustomerPrefix, n)
}
