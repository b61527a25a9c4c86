package service

import (
	"github.com/google/uuid"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/moneybook/moneybook-backend/internal/util"
	"github.com/shopspring/decimal"
)

// ReportService handles read-only aggregations over a book's transactions.
// Per-category and per-account breakdowns stay in native currencies; only
// book-wide stats are normalized to the book's default currency.
type ReportService struct {
	reportRepo domain.ReportRepository
	bookRepo   domain.BookRepository
	guard      guard
	converter  currencyConverter
}

// NewReportService creates a new ReportService
func NewReportService(reportRepo domain.ReportRepository, bookRepo domain.BookRepository, currencyRepo domain.CurrencyRepository, memberRepo domain.MemberRepository) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		bookRepo:   bookRepo,
		guard:      guard{memberRepo: memberRepo},
		converter:  currencyConverter{currencyRepo: currencyRepo},
	}
}

// bookRange loads the book and re-anchors the range's wall-clock bounds to
// the book's timezone, so a YYYY-MM-DD bound means that calendar day where
// the book lives
func (s *ReportService) bookRange(bookID int32, r domain.DateRange) (*domain.Book, domain.DateRange, error) {
	book, err := s.bookRepo.GetByID(bookID)
	if err != nil {
		return nil, r, err
	}
	loc := util.LoadLocation(book.Timezone)
	return book, domain.DateRange{
		Start: util.Rebase(r.Start, loc),
		End:   util.Rebase(r.End, loc),
	}, nil
}

// GetCategoryTotals sums raw amounts per category for one transaction type
func (s *ReportService) GetCategoryTotals(actorID uuid.UUID, bookID int32, r domain.DateRange, txType domain.TransactionType) ([]*domain.CategoryTotal, error) {
	if err := s.guard.requireView(bookID, actorID); err != nil {
		return nil, err
	}
	if txType != domain.TransactionTypeIncome && txType != domain.TransactionTypeExpense {
		return nil, domain.ErrInvalidTransactionType
	}
	_, r, err := s.bookRange(bookID, r)
	if err != nil {
		return nil, err
	}
	return s.reportRepo.SumByCategory(bookID, r, txType)
}

// GetAccountTotals sums income and expense per account in native currencies
func (s *ReportService) GetAccountTotals(actorID uuid.UUID, bookID int32, r domain.DateRange) ([]*domain.AccountTotal, error) {
	if err := s.guard.requireView(bookID, actorID); err != nil {
		return nil, err
	}
	_, r, err := s.bookRange(bookID, r)
	if err != nil {
		return nil, err
	}
	return s.reportRepo.SumByAccount(bookID, r)
}

// GetDateBucketTotals sums income and expense per day or month bucket,
// bucketed by the book's local calendar
func (s *ReportService) GetDateBucketTotals(actorID uuid.UUID, bookID int32, r domain.DateRange, bucket string) ([]*domain.DateBucketTotal, error) {
	if err := s.guard.requireView(bookID, actorID); err != nil {
		return nil, err
	}
	if !util.ValidBucket(bucket) {
		return nil, domain.ErrInvalidBucket
	}
	book, r, err := s.bookRange(bookID, r)
	if err != nil {
		return nil, err
	}
	return s.reportRepo.SumByDateBucket(bookID, r, bucket, util.LoadLocation(book.Timezone).String())
}

// GetBookStats computes book-wide income and expense totals, converting each
// account's sums into the book's default currency
func (s *ReportService) GetBookStats(actorID uuid.UUID, bookID int32, r domain.DateRange) (*domain.BookStats, error) {
	if err := s.guard.requireView(bookID, actorID); err != nil {
		return nil, err
	}

	book, r, err := s.bookRange(bookID, r)
	if err != nil {
		return nil, err
	}

	rows, err := s.reportRepo.SumByAccount(bookID, r)
	if err != nil {
		return nil, err
	}

	totalIncome := decimal.Zero
	totalExpense := decimal.Zero
	for _, row := range rows {
		income, err := s.converter.toDefault(book, row.SumIncome, row.Currency)
		if err != nil {
			return nil, err
		}
		expense, err := s.converter.toDefault(book, row.SumExpense, row.Currency)
		if err != nil {
			return nil, err
		}
		totalIncome = totalIncome.Add(income)
		totalExpense = totalExpense.Add(expense)
	}

	return &domain.BookStats{
		TotalIncome:  totalIncome,
		TotalExpense: totalExpense,
		Currency:     book.DefaultCurrency,
	}, nil
}
