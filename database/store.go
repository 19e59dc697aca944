package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"soa/tours-service/models"
	"soa/tours-service/services"
)

// Store implements the service store interfaces over mongo collections.
type Store struct {
	tours          *mongo.Collection
	executions     *mongo.Collection
	carts          *mongo.Collection
	purchaseTokens *mongo.Collection
	positions      *mongo.Collection
}

func NewStore(client *mongo.Client, databaseName string) *Store {
	db := client.Database(databaseName)
	return &Store{
		tours:          db.Collection("Tours"),
		executions:     db.Collection("TourExecutions"),
		carts:          db.Collection("ShoppingCarts"),
		purchaseTokens: db.Collection("PurchaseTokens"),
		positions:      db.Collection("TouristPositions"),
	}
}

// EnsureIndexes creates the uniqueness constraints the business rules rely
// on: one purchase token per (tourist, tour), one Active session per
// tourist, one cart and one position record per tourist.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.purchaseTokens.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "touristId", Value: 1}, {Key: "tourId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create purchase token index: %w", err)
	}

	_, err = s.executions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "touristId", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"status": models.ExecutionActive}),
	})
	if err != nil {
		return fmt.Errorf("create active execution index: %w", err)
	}

	_, err = s.carts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "touristId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create cart index: %w", err)
	}

	_, err = s.positions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "touristId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create position index: %w", err)
	}
	return nil
}

// Tours

func (s *Store) InsertTour(ctx context.Context, tour *models.Tour) error {
	result, err := s.tours.InsertOne(ctx, tour)
	if err != nil {
		return err
	}
	tour.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *Store) FindTourByID(ctx context.Context, id primitive.ObjectID) (*models.Tour, error) {
	var tour models.Tour
	err := s.tours.FindOne(ctx, bson.M{"_id": id}).Decode(&tour)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tour, nil
}

func (s *Store) FindToursByAuthor(ctx context.Context, authorID int64) ([]models.Tour, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.tours.Find(ctx, bson.M{"authorId": authorID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tours []models.Tour
	if err := cursor.All(ctx, &tours); err != nil {
		return nil, err
	}
	return tours, nil
}

func (s *Store) FindPublishedTours(ctx context.Context) ([]models.Tour, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "publishedAt", Value: -1}})
	cursor, err := s.tours.Find(ctx, bson.M{"status": models.Published}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tours []models.Tour
	if err := cursor.All(ctx, &tours); err != nil {
		return nil, err
	}
	return tours, nil
}

func (s *Store) ReplaceTour(ctx context.Context, tour *models.Tour) error {
	_, err := s.tours.ReplaceOne(ctx, bson.M{"_id": tour.ID}, tour)
	return err
}

func (s *Store) DeleteTour(ctx context.Context, id primitive.ObjectID, authorID int64) (bool, error) {
	result, err := s.tours.DeleteOne(ctx, bson.M{"_id": id, "authorId": authorID})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

// Purchase tokens

func (s *Store) PurchaseExists(ctx context.Context, touristID int64, tourID primitive.ObjectID) (bool, error) {
	err := s.purchaseTokens.FindOne(ctx, bson.M{"touristId": touristID, "tourId": tourID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) InsertPurchaseTokens(ctx context.Context, tokens []models.TourPurchaseToken) error {
	documents := make([]interface{}, 0, len(tokens))
	for i := range tokens {
		documents = append(documents, tokens[i])
	}

	// Unordered so one duplicate does not abort the rest; duplicates mean a
	// retried checkout and are not an error.
	_, err := s.purchaseTokens.InsertMany(ctx, documents, options.InsertMany().SetOrdered(false))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return nil
}

func (s *Store) FindPurchasesByTourist(ctx context.Context, touristID int64) ([]models.TourPurchaseToken, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "purchasedAt", Value: -1}})
	cursor, err := s.purchaseTokens.Find(ctx, bson.M{"touristId": touristID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tokens []models.TourPurchaseToken
	if err := cursor.All(ctx, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// Shopping carts

func (s *Store) FindCartByTourist(ctx context.Context, touristID int64) (*models.ShoppingCart, error) {
	var cart models.ShoppingCart
	err := s.carts.FindOne(ctx, bson.M{"touristId": touristID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *Store) SaveCart(ctx context.Context, cart *models.ShoppingCart) error {
	_, err := s.carts.ReplaceOne(ctx,
		bson.M{"touristId": cart.TouristID},
		cart,
		options.Replace().SetUpsert(true))
	return err
}

// Tour executions

func (s *Store) InsertExecution(ctx context.Context, execution *models.TourExecution) error {
	result, err := s.executions.InsertOne(ctx, execution)
	if mongo.IsDuplicateKeyError(err) {
		// Partial unique index on (touristId, status=Active) fired: a
		// concurrent start won the race.
		return fmt.Errorf("tourist %d already has an active session: %w", execution.TouristID, services.ErrConflict)
	}
	if err != nil {
		return err
	}
	execution.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *Store) FindActiveExecution(ctx context.Context, touristID int64) (*models.TourExecution, error) {
	var execution models.TourExecution
	err := s.executions.FindOne(ctx, bson.M{"touristId": touristID, "status": models.ExecutionActive}).Decode(&execution)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &execution, nil
}

func (s *Store) FindExecutionsByTourist(ctx context.Context, touristID int64) ([]models.TourExecution, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}})
	cursor, err := s.executions.Find(ctx, bson.M{"touristId": touristID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var executions []models.TourExecution
	if err := cursor.All(ctx, &executions); err != nil {
		return nil, err
	}
	return executions, nil
}

func (s *Store) AppendCompletedKeyPoint(ctx context.Context, executionID primitive.ObjectID, completed models.CompletedKeyPoint) (bool, error) {
	// The $ne filter re-checks the completed set at write time, so two
	// concurrent reports of the same key point cannot both append it.
	result, err := s.executions.UpdateOne(ctx,
		bson.M{
			"_id":                              executionID,
			"completedKeyPoints.keyPointOrder": bson.M{"$ne": completed.KeyPointOrder},
		},
		bson.M{
			"$push": bson.M{"completedKeyPoints": completed},
			"$set":  bson.M{"lastActivity": completed.CompletedAt},
		})
	if err != nil {
		return false, err
	}
	if result.ModifiedCount == 0 {
		return false, s.TouchActivity(ctx, executionID, completed.CompletedAt)
	}
	return true, nil
}

func (s *Store) TouchActivity(ctx context.Context, executionID primitive.ObjectID, at time.Time) error {
	_, err := s.executions.UpdateOne(ctx,
		bson.M{"_id": executionID},
		bson.M{"$set": bson.M{"lastActivity": at}})
	return err
}

func (s *Store) FinishExecution(ctx context.Context, executionID primitive.ObjectID, status models.ExecutionStatus, at time.Time) error {
	set := bson.M{"status": status, "lastActivity": at}
	switch status {
	case models.ExecutionCompleted:
		set["completedAt"] = at
	case models.ExecutionAbandoned:
		set["abandonedAt"] = at
	}

	_, err := s.executions.UpdateOne(ctx, bson.M{"_id": executionID}, bson.M{"$set": set})
	return err
}

// Tourist positions

func (s *Store) FindPositionByTourist(ctx context.Context, touristID int64) (*models.TouristPosition, error) {
	var position models.TouristPosition
	err := s.positions.FindOne(ctx, bson.M{"touristId": touristID}).Decode(&position)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &position, nil
}

func (s *Store) UpsertPosition(ctx context.Context, position *models.TouristPosition) error {
	_, err := s.positions.UpdateOne(ctx,
		bson.M{"touristId": position.TouristID},
		bson.M{"$set": bson.M{
			"latitude":  position.Latitude,
			"longitude": position.Longitude,
			"updatedAt": position.UpdatedAt,
		}},
		options.Update().SetUpsert(true))
	return err
}

var (
	_ services.TourStore      = (*Store)(nil)
	_ services.PurchaseStore  = (*Store)(nil)
	_ services.CartStore      = (*Store)(nil)
	_ services.ExecutionStore = (*Store)(nil)
	_ services.PositionStore  = (*Store)(nil)

	_ services.TourStore      = (*InMemoryStore)(nil)
	_ services.PurchaseStore  = (*InMemoryStore)(nil)
	_ services.CartStore      = (*InMemoryStore)(nil)
	_ services.ExecutionStore = (*InMemoryStore)(nil)
	_ services.PositionStore  = (*InMemoryStore)(nil)
)
