package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix       = "user:%d"
	ListingKeyPrefix    = "listing:%d"
	CompanyKeyPrefix    = "company:%d"
	CategoryCountsKey   = "categories:counts"
	ListingsVersionKey  = "listings:version"
	FeaturedListingsKey = "listings:featured:v%d"
)

const (
	UserTTL     = 5 * time.Minute
	ListingTTL  = 10 * time.Minute
	CompanyTTL  = 10 * time.Minute
	CategoryTTL = 2 * time.Minute
	ListTTL     = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ListingKey(listingID uint) string {
	return fmt.Sprintf(ListingKeyPrefix, listingID)
}

func CompanyKey(companyID uint) string {
	return fmt.Sprintf(CompanyKeyPrefix, companyID)
}

// listingsVersion is bumped whenever any listing changes so list-shaped keys roll over.
func listingsVersion(ctx context.Context) int64 {
	if client == nil {
		return 0
	}
	v, err := client.Get(ctx, ListingsVersionKey).Int64()
	if err != nil {
		return 0
	}
	return v
}

// FeaturedKey returns the featured-listings key for the current listings version.
func FeaturedKey(ctx context.Context) string {
	return fmt.Sprintf(FeaturedListingsKey, listingsVersion(ctx))
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateCompanyListings drops a company, the cached listings that embed
// it and every aggregate derived from listings.
func InvalidateCompanyListings(ctx context.Context, companyID uint, listingIDs []uint) {
	if client == nil {
		return
	}
	keys := make([]string, 0, len(listingIDs)+1)
	keys = append(keys, CompanyKey(companyID))
	for _, id := range listingIDs {
		keys = append(keys, ListingKey(id))
	}
	client.Del(ctx, keys...)
	InvalidateListings(ctx)
}

// InvalidateListing drops one listing and every aggregate derived from listings.
func InvalidateListing(ctx context.Context, listingID uint) {
	Invalidate(ctx, ListingKey(listingID))
	InvalidateListings(ctx)
}

// InvalidateListings rolls the listings version and clears category counts.
func InvalidateListings(ctx context.Context) {
	if client == nil {
		return
	}
	client.Incr(ctx, ListingsVersionKey)
	client.Del(ctx, CategoryCountsKey)
}
