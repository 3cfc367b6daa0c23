package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"assessment-service/internal/models"
)

type SessionRepository struct {
	Col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{Col: db.Collection("sessions")}
}

// GetSessions returns every attempt for (user, assessment), most recent
// first.
func (r *SessionRepository) GetSessions(ctx context.Context, userID, assessmentID string) ([]models.AssessmentSession, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: -1}})
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID, "assessment_id": assessmentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var sessions []models.AssessmentSession
	for cur.Next(ctx) {
		var s models.AssessmentSession
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (r *SessionRepository) UpsertSession(ctx context.Context, session *models.AssessmentSession) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.Col.ReplaceOne(ctx, bson.M{"_id": session.ID}, session, opts)
	return err
}

// FindExpiredInProgress returns in-progress attempts of an assessment whose
// window closed before the cutoff. Used by auto-publish.
func (r *SessionRepository) FindExpiredInProgress(ctx context.Context, assessmentID string, cutoff time.Time) ([]models.AssessmentSession, error) {
	filter := bson.M{
		"assessment_id": assessmentID,
		"status":        models.SessionInProgress,
		"end_time":      bson.M{"$lt": cutoff},
	}
	cur, err := r.Col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var sessions []models.AssessmentSession
	for cur.Next(ctx) {
		var s models.AssessmentSession
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}
