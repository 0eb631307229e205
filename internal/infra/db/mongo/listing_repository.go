package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/rates"
	domainrange "staybook/internal/domain/shared/daterange"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("listing_snapshots")}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrListingNotFound
		}
		return nil, err
	}
	return doc.toListing()
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	doc := newListingDocument(l)
	filter := bson.M{"_id": doc.ID, "version": l.Version}
	doc.Version = l.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	l.Version = doc.Version
	return nil
}

// AddBookedInterval pushes the interval only if no stored interval overlaps
// it, so the check and the write are a single atomic update.
func (r *ListingRepository) AddBookedInterval(ctx context.Context, id domainlistings.ListingID, dr domainrange.DateRange) error {
	if err := dr.Validate(); err != nil {
		return err
	}
	res, err := r.col.UpdateOne(ctx, overlapFreeFilter(id, dr), bson.M{
		"$push": bson.M{"booked": newRangeDocument(dr)},
		"$inc":  bson.M{"version": 1},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if n == 0 {
		return domainlistings.ErrListingNotFound
	}
	return domainlistings.ErrIntervalTaken
}

func (r *ListingRepository) RemoveBookedInterval(ctx context.Context, id domainlistings.ListingID, dr domainrange.DateRange) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": string(id)}, bson.M{
		"$pull": bson.M{"booked": newRangeDocument(dr)},
		"$inc":  bson.M{"version": 1},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainlistings.ErrListingNotFound
	}
	return nil
}

func overlapFreeFilter(id domainlistings.ListingID, dr domainrange.DateRange) bson.M {
	rd := newRangeDocument(dr)
	return bson.M{
		"_id": string(id),
		"booked": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"check_in":  bson.M{"$lt": rd.CheckOut},
			"check_out": bson.M{"$gt": rd.CheckIn},
		}}},
	}
}

type listingDocument struct {
	ID                 string          `bson:"_id"`
	Title              string          `bson:"title"`
	Pricing            rates.Fields    `bson:"pricing"`
	CleaningFee        int64           `bson:"cleaning_fee"`
	SecurityDeposit    int64           `bson:"security_deposit"`
	WeeklyDiscountPct  float64         `bson:"weekly_discount_pct"`
	MonthlyDiscountPct float64         `bson:"monthly_discount_pct"`
	MaxGuests          int             `bson:"max_guests"`
	AllowedCheckIn     string          `bson:"allowed_check_in"`
	AllowedCheckOut    string          `bson:"allowed_check_out"`
	TimeZone           string          `bson:"time_zone"`
	MinLeadTimeSeconds int64           `bson:"min_lead_time_s"`
	Mode               string          `bson:"mode"`
	Booked             []rangeDocument `bson:"booked"`
	FetchedAt          int64           `bson:"fetched_at"`
	Version            int64           `bson:"version"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	booked := make([]rangeDocument, 0, len(l.Booked))
	for _, b := range l.Booked {
		booked = append(booked, newRangeDocument(b))
	}
	return listingDocument{
		ID:                 string(l.ID),
		Title:              l.Title,
		Pricing:            l.Pricing,
		CleaningFee:        l.CleaningFee,
		SecurityDeposit:    l.SecurityDeposit,
		WeeklyDiscountPct:  l.WeeklyDiscountPct,
		MonthlyDiscountPct: l.MonthlyDiscountPct,
		MaxGuests:          l.MaxGuests,
		AllowedCheckIn:     l.Stay.CheckIn.String(),
		AllowedCheckOut:    l.Stay.CheckOut.String(),
		TimeZone:           l.Location().String(),
		MinLeadTimeSeconds: int64(l.MinLeadTime / time.Second),
		Mode:               string(l.Mode),
		Booked:             booked,
		FetchedAt:          l.FetchedAt.UnixMilli(),
		Version:            l.Version,
	}
}

func (d listingDocument) toListing() (*domainlistings.Listing, error) {
	booked := make([]domainrange.DateRange, 0, len(d.Booked))
	for _, b := range d.Booked {
		booked = append(booked, domainrange.DateRange{CheckIn: timestampToTime(b.CheckIn), CheckOut: timestampToTime(b.CheckOut)})
	}
	l, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:                 domainlistings.ListingID(d.ID),
		Title:              d.Title,
		Pricing:            d.Pricing,
		CleaningFee:        d.CleaningFee,
		SecurityDeposit:    d.SecurityDeposit,
		WeeklyDiscountPct:  d.WeeklyDiscountPct,
		MonthlyDiscountPct: d.MonthlyDiscountPct,
		MaxGuests:          d.MaxGuests,
		AllowedCheckIn:     d.AllowedCheckIn,
		AllowedCheckOut:    d.AllowedCheckOut,
		TimeZone:           d.TimeZone,
		MinLeadTime:        time.Duration(d.MinLeadTimeSeconds) * time.Second,
		Mode:               domainlistings.BookingMode(d.Mode),
		Booked:             booked,
		Now:                timestampToTime(d.FetchedAt),
	})
	if err != nil {
		return nil, err
	}
	l.Version = d.Version
	return l, nil
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

func newRangeDocument(dr domainrange.DateRange) rangeDocument {
	return rangeDocument{CheckIn: dr.CheckIn.UnixMilli(), CheckOut: dr.CheckOut.UnixMilli()}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainlistings.Repository = (*ListingRepository)(nil)
