package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func listFlags(cmd *cobra.Command, query map[string]*string) {
	for name, dest := range query {
		cmd.Flags().StringVar(dest, name, "", "Filter by "+name)
	}
	cmd.Flags().Int("limit", 0, "Page size")
	cmd.Flags().Int("offset", 0, "Page offset")
}

func collectQuery(cmd *cobra.Command, query map[string]*string) map[string]string {
	out := map[string]string{}
	for name, dest := range query {
		if *dest != "" {
			out[name] = *dest
		}
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		out["limit"] = fmt.Sprintf("%d", limit)
	}
	if offset, _ := cmd.Flags().GetInt("offset"); offset > 0 {
		out["offset"] = fmt.Sprintf("%d", offset)
	}
	return out
}

func init() {
	lostCmd := &cobra.Command{Use: "lost", Short: "Lost item operations"}

	var lName, lDesc, lCategory, lLocation, lDate string
	reportLost := &cobra.Command{
		Use:   "report",
		Short: "Report a lost item",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{
				"name":        lName,
				"description": lDesc,
				"category":    lCategory,
				"location":    lLocation,
				"lostDate":    lDate,
			}
			data, err := doPostJSON("/api/items/lost", payload)
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	reportLost.Flags().StringVarP(&lName, "name", "n", "", "Item name (required)")
	reportLost.Flags().StringVarP(&lDesc, "description", "d", "", "Description (required)")
	reportLost.Flags().StringVarP(&lCategory, "category", "c", "", "Category (required)")
	reportLost.Flags().StringVarP(&lLocation, "location", "l", "", "Where it was lost (required)")
	reportLost.Flags().StringVar(&lDate, "date", "", "Date lost, YYYY-MM-DD (required)")
	for _, f := range []string{"name", "description", "category", "location", "date"} {
		_ = reportLost.MarkFlagRequired(f)
	}
	lostCmd.AddCommand(reportLost)

	lostQuery := map[string]*string{
		"name": new(string), "category": new(string), "location": new(string),
		"dateFrom": new(string), "dateTo": new(string),
	}
	listLost := &cobra.Command{
		Use:   "list",
		Short: "Browse open lost items",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/items/lost", collectQuery(cmd, lostQuery))
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	listFlags(listLost, lostQuery)
	lostCmd.AddCommand(listLost)

	getLost := &cobra.Command{
		Use:   "get ITEM_ID",
		Short: "Get a lost item by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/items/lost/"+args[0], nil)
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	lostCmd.AddCommand(getLost)

	var upLDesc, upLLocation, upLDate string
	updateLost := &cobra.Command{
		Use:   "update ITEM_ID",
		Short: "Edit one of your lost items (only while still open)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{}
			if upLDesc != "" {
				payload["description"] = upLDesc
			}
			if upLLocation != "" {
				payload["location"] = upLLocation
			}
			if upLDate != "" {
				payload["lostDate"] = upLDate
			}
			data, err := doPatchJSON("/api/items/lost/"+args[0], payload)
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	updateLost.Flags().StringVarP(&upLDesc, "description", "d", "", "New description")
	updateLost.Flags().StringVarP(&upLLocation, "location", "l", "", "New location")
	updateLost.Flags().StringVar(&upLDate, "date", "", "New date lost, YYYY-MM-DD")
	lostCmd.AddCommand(updateLost)

	deleteLost := &cobra.Command{
		Use:   "delete ITEM_ID",
		Short: "Delete one of your lost items (only while still open)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doDelete("/api/items/lost/" + args[0])
		},
	}
	lostCmd.AddCommand(deleteLost)

	mineLost := &cobra.Command{
		Use:   "mine",
		Short: "List your own lost items",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/me/lost-items", nil)
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	lostCmd.AddCommand(mineLost)

	rootCmd.AddCommand(lostCmd)

	foundCmd := &cobra.Command{Use: "found", Short: "Found item operations"}

	var fName, fDesc, fCategory, fLocation, fDate, q1, q2, a1, a2 string
	reportFound := &cobra.Command{
		Use:   "report",
		Short: "Report a found item with its verification quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{
				"name":        fName,
				"description": fDesc,
				"category":    fCategory,
				"location":    fLocation,
				"foundDate":   fDate,
				"question1":   q1,
				"question2":   q2,
				"answer1":     a1,
				"answer2":     a2,
			}
			data, err := doPostJSON("/api/items/found", payload)
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	reportFound.Flags().StringVarP(&fName, "name", "n", "", "Item name (required)")
	reportFound.Flags().StringVarP(&fDesc, "description", "d", "", "Description (required)")
	reportFound.Flags().StringVarP(&fCategory, "category", "c", "", "Category (required)")
	reportFound.Flags().StringVarP(&fLocation, "location", "l", "", "Where it was found (required)")
	reportFound.Flags().StringVar(&fDate, "date", "", "Date found, YYYY-MM-DD (required)")
	reportFound.Flags().StringVar(&q1, "question1", "", "First verification question (required)")
	reportFound.Flags().StringVar(&q2, "question2", "", "Second verification question (required)")
	reportFound.Flags().StringVar(&a1, "answer1", "", "Answer to the first question (required)")
	reportFound.Flags().StringVar(&a2, "answer2", "", "Answer to the second question (required)")
	for _, f := range []string{"name", "description", "category", "location", "date", "question1", "question2", "answer1", "answer2"} {
		_ = reportFound.MarkFlagRequired(f)
	}
	foundCmd.AddCommand(reportFound)

	foundQuery := map[string]*string{
		"name": new(string), "category": new(string), "location": new(string),
		"dateFrom": new(string), "dateTo": new(string),
	}
	listFound := &cobra.Command{
		Use:   "list",
		Short: "Browse publicly visible found items",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/items/found", collectQuery(cmd, foundQuery))
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	listFlags(listFound, foundQuery)
	foundCmd.AddCommand(listFound)

	getFound := &cobra.Command{
		Use:   "get ITEM_ID",
		Short: "Get a found item by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/items/found/"+args[0], nil)
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	foundCmd.AddCommand(getFound)

	var upFDesc, upFLocation, upFDate string
	updateFound := &cobra.Command{
		Use:   "update ITEM_ID",
		Short: "Edit one of your found items (only while still open)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{}
			if upFDesc != "" {
				payload["description"] = upFDesc
			}
			if upFLocation != "" {
				payload["location"] = upFLocation
			}
			if upFDate != "" {
				payload["foundDate"] = upFDate
			}
			data, err := doPatchJSON("/api/items/found/"+args[0], payload)
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	updateFound.Flags().StringVarP(&upFDesc, "description", "d", "", "New description")
	updateFound.Flags().StringVarP(&upFLocation, "location", "l", "", "New location")
	updateFound.Flags().StringVar(&upFDate, "date", "", "New date found, YYYY-MM-DD")
	foundCmd.AddCommand(updateFound)

	deleteFound := &cobra.Command{
		Use:   "delete ITEM_ID",
		Short: "Delete one of your found items (only while still open)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doDelete("/api/items/found/" + args[0])
		},
	}
	foundCmd.AddCommand(deleteFound)

	mineFound := &cobra.Command{
		Use:   "mine",
		Short: "List your own found items",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/me/found-items", nil)
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	foundCmd.AddCommand(mineFound)

	rootCmd.AddCommand(foundCmd)
}
