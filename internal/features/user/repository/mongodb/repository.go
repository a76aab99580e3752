package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kryptospire-dev/bot-dash/internal/common/logger"
	"github.com/kryptospire-dev/bot-dash/internal/features/user/models"
	"github.com/kryptospire-dev/bot-dash/internal/features/user/repository"
	"github.com/kryptospire-dev/bot-dash/internal/platform/mongodb"
)

const usersCollection = "users"

// prefixUpperBound closes a prefix range: every string starting with the
// prefix sorts below prefix + U+F8FF.
const prefixUpperBound = ""

type userRepository struct {
	client *mongodb.Client
	coll   *mongo.Collection
}

func NewUserRepository(client *mongodb.Client) repository.UserRepository {
	return &userRepository{
		client: client,
		coll:   client.Database().Collection(usersCollection),
	}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.UserDocument, error) {
	var doc models.UserDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}

	return &doc, nil
}

func (r *userRepository) FetchPage(ctx context.Context, q models.ListQuery, pageSize int) (*repository.NativePage, error) {
	sortField := nativeSortField(q.SortBy)
	dir := sortDirection(q.SortDir)

	conds := nativePredicates(q)

	if q.Cursor != "" {
		cursor, err := decodeCursor(q.Cursor, q.SortBy, q.SortDir)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cursorPredicate(cursor, sortField, dir))
	}

	filter := combine(conds)

	// _id is an explicit secondary sort key so the cursor is well defined
	// for equal sort values.
	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: dir}, {Key: "_id", Value: dir}}).
		SetLimit(int64(pageSize))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch users page: %w", err)
	}

	var docs []models.UserDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users page: %w", err)
	}

	page := &repository.NativePage{
		Docs:    docs,
		HasMore: len(docs) == pageSize,
	}
	if len(docs) > 0 {
		page.NextCursor = cursorFor(docs[len(docs)-1], q.SortBy, q.SortDir)
	}

	return page, nil
}

func (r *userRepository) SearchPrefix(ctx context.Context, field repository.SearchField, term string) ([]models.UserDocument, error) {
	filter := bson.M{string(field): bson.M{"$gte": term, "$lte": term + prefixUpperBound}}

	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search users by %s: %w", field, err)
	}

	var docs []models.UserDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}

	return docs, nil
}

func (r *userRepository) ScanAll(ctx context.Context) ([]models.UserDocument, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}

	var docs []models.UserDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users scan: %w", err)
	}

	return docs, nil
}

func (r *userRepository) MarkRewardPaid(ctx context.Context, id string, at time.Time) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"reward_info.reward_status":     string(models.RewardStatusPaid),
		"reward_info.status_updated_at": at,
	}})
	if err != nil {
		return fmt.Errorf("mark reward paid for %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *userRepository) ReleaseReferralRewards(ctx context.Context, id string, at time.Time) error {
	// Pipeline update: total_rewards is set from total_referrals atomically,
	// without a read-modify-write round trip.
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "referral_stats.total_rewards", Value: bson.M{"$ifNull": bson.A{"$referral_stats.total_referrals", 0}}},
			{Key: "updated_at", Value: at},
		}}},
	}

	res, err := r.coll.UpdateByID(ctx, id, pipeline)
	if err != nil {
		return fmt.Errorf("release referral rewards for %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *userRepository) DeleteAll(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	session, err := r.client.Mongo().StartSession()
	if err != nil {
		return 0, fmt.Errorf("start delete session: %w", err)
	}
	defer session.EndSession(ctx)

	deleted, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := r.coll.DeleteMany(sc, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, err
		}
		return int(res.DeletedCount), nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete batch of %d users: %w", len(ids), err)
	}

	return deleted.(int), nil
}

func (r *userRepository) Watch(ctx context.Context, id string) (<-chan models.UserDocument, error) {
	// Deliver the current state first, the way a snapshot listener does.
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: id}}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	stream, err := r.coll.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, fmt.Errorf("watch user %s: %w", id, err)
	}

	ch := make(chan models.UserDocument, 1)
	ch <- *current

	go func() {
		defer close(ch)
		defer func() {
			if err := stream.Close(context.Background()); err != nil {
				logger.Warn().Err(err).Str("user_id", id).Msg("Failed to close change stream")
			}
		}()

		for stream.Next(ctx) {
			var event struct {
				FullDocument *models.UserDocument `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				logger.Warn().Err(err).Str("user_id", id).Msg("Failed to decode change event")
				continue
			}
			if event.FullDocument == nil {
				// Delete event: the watched document is gone.
				return
			}

			select {
			case ch <- *event.FullDocument:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

func nativeSortField(sortBy models.SortBy) string {
	switch sortBy {
	case models.SortByName:
		return "first_name"
	case models.SortByMntcEarned:
		return "reward_info.mntc_earned"
	default:
		return "created_at"
	}
}

func sortDirection(dir models.SortDir) int {
	if dir == models.SortAsc {
		return 1
	}
	return -1
}

// nativePredicates translates the store-expressible filters. The
// pending-referral filter is cross-field and deliberately absent here.
func nativePredicates(q models.ListQuery) []bson.M {
	var conds []bson.M

	// Pending payout without a payout address is meaningless, so the pending
	// filter always implies the address predicate.
	if q.OnlyWithAddress || q.OnlyPendingStatus {
		conds = append(conds, bson.M{"bep20_address": bson.M{"$gt": ""}})
	}
	if q.OnlyPendingStatus {
		conds = append(conds, bson.M{"reward_info.reward_status": string(models.RewardStatusPending)})
	}

	return conds
}

func cursorPredicate(c *pageCursor, sortField string, dir int) bson.M {
	op := "$gt"
	if dir < 0 {
		op = "$lt"
	}

	value := c.value()
	if value == nil {
		// The previous page ended inside the group of documents missing the
		// sort field. Stay within the group and advance by id; ascending
		// order puts that group first, so every valued document still lies
		// ahead and must stay reachable.
		within := bson.M{sortField: nil, "_id": bson.M{op: c.LastID}}
		if dir > 0 {
			return bson.M{"$or": []bson.M{
				within,
				{sortField: bson.M{"$ne": nil}},
			}}
		}
		return within
	}

	conds := []bson.M{
		{sortField: bson.M{op: value}},
		{sortField: value, "_id": bson.M{op: c.LastID}},
	}
	if dir < 0 {
		// Descending order puts the missing-field group after every valued
		// document, where a $lt bound cannot reach it.
		conds = append(conds, bson.M{sortField: nil})
	}

	return bson.M{"$or": conds}
}

func combine(conds []bson.M) bson.M {
	switch len(conds) {
	case 0:
		return bson.M{}
	case 1:
		return conds[0]
	default:
		return bson.M{"$and": conds}
	}
}
