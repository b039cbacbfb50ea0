package cockroach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgxutil"

	"github.com/foodbridge/foodbridge/id"
	"github.com/foodbridge/foodbridge/types"
)

const sqlBulkRequestCols = `
	  bulk_requests.id
	, bulk_requests.ngo_id
	, bulk_requests.title
	, bulk_requests.description
	, bulk_requests.urgency
	, bulk_requests.event_type
	, bulk_requests.deadline
	, bulk_requests.estimated_beneficiaries
	, bulk_requests.logistics
	, bulk_requests.whatsapp_contact
	, bulk_requests.status
	, bulk_requests.response_ids
	, bulk_requests.fulfilled_at
	, bulk_requests.created_at
	, bulk_requests.updated_at
`

const sqlBulkResponseCols = `
	  bulk_responses.id
	, bulk_responses.request_id
	, bulk_responses.donor_id
	, bulk_responses.donation_items
	, bulk_responses.quantity
	, bulk_responses.availability_date
	, bulk_responses.can_deliver
	, bulk_responses.notes
	, bulk_responses.status
	, bulk_responses.created_at
`

func (c *Cockroach) CreateBulkRequest(ctx context.Context, in types.SubmitBulkRequest) (types.BulkRequest, error) {
	query := `
		INSERT INTO bulk_requests (
			  id
			, ngo_id
			, title
			, description
			, urgency
			, event_type
			, deadline
			, estimated_beneficiaries
			, logistics
			, whatsapp_contact
		)
		VALUES (
			  @request_id
			, @ngo_id
			, @title
			, @description
			, @urgency
			, @event_type
			, @deadline
			, @estimated_beneficiaries
			, @logistics
			, @whatsapp_contact
		)
		RETURNING ` + sqlBulkRequestCols
	args := pgx.StrictNamedArgs{
		"request_id":              id.Generate(),
		"ngo_id":                  in.NGOID,
		"title":                   in.Title,
		"description":             in.Description,
		"urgency":                 in.Urgency,
		"event_type":              in.EventType,
		"deadline":                in.Deadline,
		"estimated_beneficiaries": in.EstimatedBeneficiaries,
		"logistics":               in.Logistics,
		"whatsapp_contact":        in.WhatsAppContact,
	}
	out, err := pgxutil.SelectRow(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.BulkRequest])
	if isForeignKeyViolation(err) {
		return out, types.ErrNGONotFound
	}

	if err != nil {
		return out, fmt.Errorf("sql insert bulk request: %w", err)
	}

	return out, nil
}

func (c *Cockroach) BulkRequest(ctx context.Context, requestID string) (types.BulkRequest, error) {
	return c.bulkRequest(ctx, requestID, false)
}

func (c *Cockroach) bulkRequest(ctx context.Context, requestID string, forUpdate bool) (types.BulkRequest, error) {
	query := `SELECT ` + sqlBulkRequestCols + ` FROM bulk_requests WHERE bulk_requests.id = @request_id`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	args := pgx.StrictNamedArgs{
		"request_id": requestID,
	}
	out, err := pgxutil.SelectRow(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.BulkRequest])
	if errors.Is(err, pgx.ErrNoRows) {
		return out, types.ErrBulkRequestNotFound
	}

	if err != nil {
		return out, fmt.Errorf("sql select bulk request: %w", err)
	}

	return out, nil
}

func (c *Cockroach) BulkRequests(ctx context.Context, in types.ListBulkRequests) (types.Page[types.BulkRequest], error) {
	var out types.Page[types.BulkRequest]

	pageArgs, err := ParsePageArgs[time.Time](in.PageArgs)
	if err != nil {
		return out, err
	}

	var filters []string
	args := pgx.StrictNamedArgs{}

	if in.NGOID != nil {
		filters = append(filters, "bulk_requests.ngo_id = @ngo_id")
		args["ngo_id"] = *in.NGOID
	}

	if in.Status != nil {
		filters = append(filters, "bulk_requests.status = @status")
		args["status"] = *in.Status
	}

	query := addPageClauses(`SELECT `+sqlBulkRequestCols+` FROM bulk_requests`, filters, "bulk_requests", "created_at", args, pageArgs)

	out.Items, err = pgxutil.Select(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.BulkRequest])
	if err != nil {
		return out, fmt.Errorf("sql select bulk requests: %w", err)
	}

	err = applyPageInfo(&out, pageArgs, func(r types.BulkRequest) Cursor[time.Time] {
		return Cursor[time.Time]{ID: r.ID, Value: r.CreatedAt}
	})
	if err != nil {
		return out, err
	}

	return out, nil
}

// UpdateBulkRequestStatus sets the status and, the first time the
// request becomes fulfilled, counts it as fulfilled for its NGO. A
// request reopened and fulfilled again is not counted twice.
func (c *Cockroach) UpdateBulkRequestStatus(ctx context.Context, in types.UpdateBulkRequestStatus) (types.BulkRequest, error) {
	var out types.BulkRequest
	return out, c.db.RunTx(ctx, func(ctx context.Context) error {
		current, err := c.bulkRequest(ctx, in.RequestID, true)
		if err != nil {
			return err
		}

		query := `
			UPDATE bulk_requests
			SET status = @status
			  , fulfilled_at = CASE WHEN @status::VARCHAR = 'fulfilled' THEN COALESCE(fulfilled_at, now()) ELSE fulfilled_at END
			  , updated_at = now()
			WHERE id = @request_id
			RETURNING ` + sqlBulkRequestCols
		args := pgx.StrictNamedArgs{
			"request_id": in.RequestID,
			"status":     in.Status,
		}
		out, err = pgxutil.SelectRow(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.BulkRequest])
		if err != nil {
			return fmt.Errorf("sql update bulk request status: %w", err)
		}

		if current.FulfilledAt != nil || in.Status != types.BulkRequestStatusFulfilled {
			return nil
		}

		_, err = c.db.Exec(ctx, `
			UPDATE ngos
			SET fulfilled_requests = fulfilled_requests + 1
			  , people_served = people_served + @beneficiaries
			WHERE id = @ngo_id
		`, pgx.StrictNamedArgs{
			"ngo_id":        current.NGOID,
			"beneficiaries": current.EstimatedBeneficiaries,
		})
		if err != nil {
			return fmt.Errorf("sql increase ngo fulfilled requests: %w", err)
		}

		return nil
	})
}

// CreateBulkResponse stores the pledge and appends its id to the parent
// request within one transaction.
func (c *Cockroach) CreateBulkResponse(ctx context.Context, in types.RespondToBulkRequest) (types.BulkResponse, error) {
	var out types.BulkResponse
	return out, c.db.RunTx(ctx, func(ctx context.Context) error {
		req, err := c.bulkRequest(ctx, in.RequestID, true)
		if err != nil {
			return err
		}

		if !req.Status.AcceptsResponses() {
			return types.ErrBulkRequestClosed
		}

		query := `
			INSERT INTO bulk_responses (
				  id
				, request_id
				, donor_id
				, donation_items
				, quantity
				, availability_date
				, can_deliver
				, notes
			)
			VALUES (
				  @response_id
				, @request_id
				, @donor_id
				, @donation_items
				, @quantity
				, @availability_date
				, @can_deliver
				, @notes
			)
			RETURNING ` + sqlBulkResponseCols
		args := pgx.StrictNamedArgs{
			"response_id":       id.Generate(),
			"request_id":        in.RequestID,
			"donor_id":          in.LoggedInUserID(),
			"donation_items":    in.DonationItems,
			"quantity":          in.Quantity,
			"availability_date": in.AvailabilityDate,
			"can_deliver":       in.CanDeliver,
			"notes":             in.Notes,
		}
		out, err = pgxutil.SelectRow(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.BulkResponse])
		if err != nil {
			return fmt.Errorf("sql insert bulk response: %w", err)
		}

		_, err = c.db.Exec(ctx, `
			UPDATE bulk_requests
			SET response_ids = array_append(response_ids, @response_id)
			  , updated_at = now()
			WHERE id = @request_id
		`, pgx.StrictNamedArgs{
			"request_id":  in.RequestID,
			"response_id": out.ID,
		})
		if err != nil {
			return fmt.Errorf("sql append bulk request response id: %w", err)
		}

		return nil
	})
}

func (c *Cockroach) BulkResponse(ctx context.Context, responseID string) (types.BulkResponse, error) {
	query := `SELECT ` + sqlBulkResponseCols + ` FROM bulk_responses WHERE bulk_responses.id = @response_id`
	args := pgx.StrictNamedArgs{
		"response_id": responseID,
	}
	out, err := pgxutil.SelectRow(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.BulkResponse])
	if errors.Is(err, pgx.ErrNoRows) {
		return out, types.ErrBulkResponseNotFound
	}

	if err != nil {
		return out, fmt.Errorf("sql select bulk response: %w", err)
	}

	return out, nil
}

func (c *Cockroach) BulkResponses(ctx context.Context, requestID string) ([]types.BulkResponse, error) {
	query := `SELECT ` + sqlBulkResponseCols + ` FROM bulk_responses` +
		where([]string{"bulk_responses.request_id = @request_id"}) +
		`ORDER BY bulk_responses.created_at ASC, bulk_responses.id ASC`
	args := pgx.StrictNamedArgs{
		"request_id": requestID,
	}
	out, err := pgxutil.Select(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.BulkResponse])
	if err != nil {
		return nil, fmt.Errorf("sql select bulk responses: %w", err)
	}

	return out, nil
}

func (c *Cockroach) UpdateBulkResponseStatus(ctx context.Context, in types.UpdateBulkResponseStatus) (types.BulkResponse, error) {
	query := `
		UPDATE bulk_responses
		SET status = @status
		WHERE id = @response_id
		RETURNING ` + sqlBulkResponseCols
	args := pgx.StrictNamedArgs{
		"response_id": in.ResponseID,
		"status":      in.Status,
	}
	out, err := pgxutil.SelectRow(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.BulkResponse])
	if errors.Is(err, pgx.ErrNoRows) {
		return out, types.ErrBulkResponseNotFound
	}

	if err != nil {
		return out, fmt.Errorf("sql update bulk response status: %w", err)
	}

	return out, nil
}
