package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"ykjam/shopfront/pkg"
	"ykjam/shopfront/pkg/session"
	"ykjam/shopfront/pkg/shop/response"
)

type config struct {
	APIBaseUrl     string `envconfig:"API_BASE_URL" default:"http://127.0.0.1:8000/api"`
	FrontendUrl    string `envconfig:"FRONTEND_URL" default:"http://127.0.0.1:8080"`
	TokenFile      string `envconfig:"TOKEN_FILE"`
	TimeoutSeconds int    `envconfig:"TIMEOUT_SECONDS" default:"30"`
}

type app struct {
	conf    config
	store   session.Store
	client  pkg.Client
	service pkg.Service
	reader  *bufio.Reader
}

func (a *app) prompt(label, current string) (value string, err error) {
	if current != "" {
		fmt.Printf("%s [%s] > ", label, current)
	} else {
		fmt.Printf("%s > ", label)
	}
	var input string
	input, err = a.reader.ReadString('\n')
	if err != nil {
		eMsg := fmt.Sprintf("error reading %s, leaving", label)
		log.WithError(err).Error(eMsg)
		err = errors.Wrap(err, eMsg)
		return
	}
	input = strings.TrimSpace(input)
	if input == "" {
		value = current
		return
	}
	value = input
	return
}

// requireAuth blocks authenticated actions before any request is sent.
func (a *app) requireAuth() error {
	if !a.store.IsAuthenticated() {
		return errors.New("not logged in, run 'shopfront-cli login' first")
	}
	return nil
}

// userMessage prefers the server's business error text, shown verbatim.
func userMessage(err error, fallback string) string {
	if statusErr, ok := pkg.AsAPIStatusError(err); ok {
		if msg := statusErr.BusinessMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}

func (a *app) cmdRegister(c *cli.Context) error {
	req := pkg.RegisterRequest{
		Username:  c.String("username"),
		Email:     c.String("email"),
		Password:  c.String("password"),
		FirstName: c.String("first-name"),
		LastName:  c.String("last-name"),
	}
	var err error
	if req.Username, err = a.prompt("username", req.Username); err != nil {
		return err
	}
	if req.Email, err = a.prompt("email", req.Email); err != nil {
		return err
	}
	if req.Password, err = a.prompt("password", req.Password); err != nil {
		return err
	}
	req.Password2 = req.Password

	auth, err := a.client.Register(c.Context, req)
	if err != nil {
		return errors.New(userMessage(err, "registration failed"))
	}
	if auth.IsValid() {
		if err = a.store.Save(auth.AccessToken()); err != nil {
			return err
		}
		fmt.Println("registered and logged in")
		return nil
	}
	fmt.Println("registered, now log in with 'shopfront-cli login'")
	return nil
}

func (a *app) cmdLogin(c *cli.Context) error {
	username := c.Args().Get(0)
	password := c.Args().Get(1)
	var err error
	if username, err = a.prompt("username", username); err != nil {
		return err
	}
	if password, err = a.prompt("password", password); err != nil {
		return err
	}
	auth, err := a.client.Login(c.Context, username, password)
	if err != nil {
		return errors.New(userMessage(err, "login failed"))
	}
	if !auth.IsValid() {
		return errors.New("login response carried no access token")
	}
	if err = a.store.Save(auth.AccessToken()); err != nil {
		return err
	}
	fmt.Println("logged in")
	return nil
}

func (a *app) cmdLogout(_ *cli.Context) error {
	if err := a.store.Clear(); err != nil {
		return err
	}
	fmt.Println("logged out")
	return nil
}

func (a *app) cmdProfile(c *cli.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	profile, err := a.client.Profile(c.Context)
	if err != nil {
		return errors.New(userMessage(err, "failed to load profile"))
	}
	fmt.Printf("%s <%s> %s %s\n", profile.Username, profile.Email, profile.FirstName, profile.LastName)
	return nil
}

func (a *app) cmdCategories(c *cli.Context) error {
	categories, err := a.client.Categories(c.Context)
	if err != nil {
		return errors.New(userMessage(err, "failed to load categories"))
	}
	for _, category := range categories {
		fmt.Printf("%4d  %-24s %s\n", category.ID, category.Name, category.Slug)
	}
	return nil
}

func filterFromFlags(c *cli.Context) pkg.ProductFilter {
	filter := pkg.ProductFilter{
		Category: c.String("category"),
		Search:   c.String("search"),
		Page:     c.Int("page"),
	}
	if c.IsSet("min-price") {
		v := c.Float64("min-price")
		filter.MinPrice = &v
	}
	if c.IsSet("max-price") {
		v := c.Float64("max-price")
		filter.MaxPrice = &v
	}
	return filter
}

func printProducts(products []response.Product) {
	for _, p := range products {
		fmt.Printf("%4d  %-40s %8.2f  %s\n", p.ID, p.Title, p.FinalPrice, p.Slug)
	}
}

func (a *app) cmdProducts(c *cli.Context) error {
	page, err := a.client.Products(c.Context, filterFromFlags(c))
	if err != nil {
		return errors.New(userMessage(err, "failed to load products"))
	}
	printProducts(page.Results)
	if page.Count > len(page.Results) {
		fmt.Printf("showing %d of %d products\n", len(page.Results), page.Count)
	}
	return nil
}

func (a *app) cmdFeatured(c *cli.Context) error {
	products, err := a.client.FeaturedProducts(c.Context)
	if err != nil {
		return errors.New(userMessage(err, "failed to load featured products"))
	}
	printProducts(products)
	return nil
}

func (a *app) cmdProduct(c *cli.Context) error {
	slug := c.Args().First()
	if slug == "" {
		return errors.New("product slug is required")
	}
	p, err := a.client.ProductBySlug(c.Context, slug)
	if err != nil {
		return errors.New(userMessage(err, "failed to load product"))
	}
	fmt.Printf("%s (#%d)\n", p.Title, p.ID)
	fmt.Printf("  price: %.2f", p.FinalPrice)
	if p.DiscountPrice != nil {
		fmt.Printf(" (was %.2f)", p.Price)
	}
	fmt.Println()
	if p.CategoryName != "" {
		fmt.Printf("  category: %s\n", p.CategoryName)
	} else if p.Category != nil {
		fmt.Printf("  category: %s\n", p.Category.Name)
	}
	fmt.Printf("  rating: %.1f (%d ratings), downloads: %d\n", p.Rating, p.TotalRatings, p.Downloads)
	if p.ShortDescription != "" {
		fmt.Printf("  %s\n", p.ShortDescription)
	}
	return nil
}

func (a *app) cmdSearch(c *cli.Context) error {
	query := c.Args().First()
	if query == "" {
		return errors.New("search query is required")
	}
	page, err := a.client.SearchProducts(c.Context, query, filterFromFlags(c))
	if err != nil {
		return errors.New(userMessage(err, "search failed"))
	}
	printProducts(page.Results)
	return nil
}

func printCart(cart response.Cart) {
	for _, item := range cart.Items {
		fmt.Printf("%4d  %-40s %8.2f\n", item.ID, item.Product.Title, item.Product.FinalPrice)
	}
	// server totals are authoritative, never recomputed here
	fmt.Printf("items: %d, total: %.2f\n", cart.TotalItems, cart.TotalPrice)
}

func (a *app) cmdCartShow(c *cli.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	cart, err := a.client.Cart(c.Context)
	if err != nil {
		return errors.New(userMessage(err, "failed to load cart"))
	}
	if cart.IsEmpty() {
		fmt.Println("cart is empty")
		return nil
	}
	printCart(cart)
	return nil
}

func (a *app) cmdCartAdd(c *cli.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	productID, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return errors.Wrap(err, "product id must be a number")
	}
	cart, err := a.client.AddToCart(c.Context, productID)
	if err != nil {
		return errors.New(userMessage(err, "failed to add to cart"))
	}
	printCart(cart)
	return nil
}

func (a *app) cmdCartRemove(c *cli.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	itemID, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return errors.Wrap(err, "cart item id must be a number")
	}
	cart, err := a.client.RemoveFromCart(c.Context, itemID)
	if err != nil {
		return errors.New(userMessage(err, "failed to remove from cart"))
	}
	printCart(cart)
	return nil
}

func (a *app) cmdCartClear(c *cli.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if err := a.client.ClearCart(c.Context); err != nil {
		return errors.New(userMessage(err, "failed to clear cart"))
	}
	fmt.Println("cart cleared")
	return nil
}

func printOrder(order response.Order) {
	fmt.Printf("order %s  %s  total %.2f\n", order.OrderID, order.Status, order.TotalAmount)
	for _, item := range order.Items {
		fmt.Printf("%6d  %-40s %8.2f", item.ID, item.Product.Title, item.Price)
		if order.IsDownloadable() {
			if item.DownloadsExhausted() {
				fmt.Printf("  downloads: %d/%d (limit reached)", item.DownloadCount, item.DownloadLimit)
			} else {
				fmt.Printf("  downloads: %d/%d", item.DownloadCount, item.DownloadLimit)
			}
		}
		fmt.Println()
	}
	if !order.IsDownloadable() {
		fmt.Println("downloads become available once payment completes")
	}
}

func (a *app) cmdOrders(c *cli.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	orders, err := a.client.Orders(c.Context)
	if err != nil {
		return errors.New(userMessage(err, "failed to load orders"))
	}
	if len(orders) == 0 {
		fmt.Println("no orders yet")
		return nil
	}
	for _, order := range orders {
		printOrder(order)
	}
	return nil
}

func (a *app) cmdOrder(c *cli.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	orderID := c.Args().First()
	if orderID == "" {
		return errors.New("order id is required")
	}
	order, err := a.client.OrderDetail(c.Context, orderID)
	if err != nil {
		return errors.New(userMessage(err, "failed to load order"))
	}
	printOrder(order)
	return nil
}

// cmdCheckout walks the whole lifecycle: create the order from the cart
// when no id is given, collect billing details, initiate the payment and
// print the gateway URL the user must open. Control resumes in shopfrontd
// when the gateway redirects back.
func (a *app) cmdCheckout(c *cli.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	orderID := c.Args().First()
	if orderID == "" {
		created, err := a.service.Step1CreateOrder(c.Context)
		if err != nil {
			if created.Reason != "" {
				return errors.New(created.Reason)
			}
			return errors.New("failed to create order from cart")
		}
		orderID = created.Order.OrderID
		fmt.Printf("order %s created from cart, total %.2f\n", orderID, created.Order.TotalAmount)
	} else {
		order, err := a.client.OrderDetail(c.Context, orderID)
		if err != nil {
			return errors.New(userMessage(err, "failed to load order"))
		}
		if order.IsCompleted() {
			fmt.Println("order is already completed, see 'shopfront-cli order' for downloads")
			return nil
		}
	}

	details := pkg.CheckoutDetails{
		Phone:    c.String("phone"),
		Address:  c.String("address"),
		City:     c.String("city"),
		Postcode: c.String("postcode"),
	}
	var err error
	if details.Phone, err = a.prompt("phone", details.Phone); err != nil {
		return err
	}
	if details.Address, err = a.prompt("address", details.Address); err != nil {
		return err
	}
	if details.City, err = a.prompt("city", details.City); err != nil {
		return err
	}
	if details.Postcode, err = a.prompt("postcode", details.Postcode); err != nil {
		return err
	}

	resp, err := a.service.Step2InitiatePayment(c.Context, pkg.InitiatePaymentRequest{
		OrderID:     orderID,
		Details:     details,
		FrontendURL: a.conf.FrontendUrl,
	})
	if err != nil {
		if resp.Status == pkg.CheckoutStatusInvalidInput {
			return errors.Wrap(err, "checkout details rejected")
		}
		if resp.Reason != "" {
			return errors.New(resp.Reason)
		}
		return errors.New("payment initiation failed, order remains pending")
	}
	fmt.Printf("payment %s initiated\n", resp.PaymentID)
	fmt.Printf("open the gateway in a browser to continue:\n  %s\n", resp.GatewayURL)
	fmt.Printf("the gateway will redirect back to %s/payment/... served by shopfrontd\n", a.conf.FrontendUrl)
	return nil
}

func (a *app) cmdDownload(c *cli.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	orderID := c.Args().Get(0)
	if orderID == "" {
		return errors.New("order id is required")
	}
	itemID, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return errors.Wrap(err, "order item id must be a number")
	}
	order, err := a.client.OrderDetail(c.Context, orderID)
	if err != nil {
		return errors.New(userMessage(err, "failed to load order"))
	}
	if !order.IsDownloadable() {
		return errors.New("order is not completed yet, downloads are not available")
	}
	for _, item := range order.Items {
		if item.ID != itemID {
			continue
		}
		if item.DownloadsExhausted() {
			return errors.Errorf("download limit reached, %d of %d remaining", item.DownloadsRemaining(), item.DownloadLimit)
		}
		download, err := a.client.DownloadProduct(c.Context, item.ID)
		if err != nil {
			return errors.New(userMessage(err, "download refused"))
		}
		if !download.IsValid() {
			return errors.New("server returned no download url")
		}
		fmt.Printf("download url: %s\n", download.DownloadURL)
		fmt.Printf("downloads remaining: %d\n", download.DownloadsRemaining)
		return nil
	}
	return errors.Errorf("item %d is not part of order %s", itemID, orderID)
}

func (a *app) cmdReviews(c *cli.Context) error {
	productID, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return errors.Wrap(err, "product id must be a number")
	}
	reviews, err := a.client.ProductReviews(c.Context, productID)
	if err != nil {
		return errors.New(userMessage(err, "failed to load reviews"))
	}
	for _, review := range reviews {
		fmt.Printf("%-16s %d/5  %s\n", review.UserName, review.Rating, review.Comment)
	}
	return nil
}

func (a *app) cmdReview(c *cli.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	productID, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return errors.Wrap(err, "product id must be a number")
	}
	rating := c.Int("rating")
	if rating < 1 || rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}
	review, err := a.client.AddReview(c.Context, productID, rating, c.String("comment"))
	if err != nil {
		return errors.New(userMessage(err, "failed to add review"))
	}
	fmt.Printf("review #%d added\n", review.ID)
	return nil
}

func (a *app) cmdWishlist(c *cli.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	items, err := a.client.Wishlist(c.Context)
	if err != nil {
		return errors.New(userMessage(err, "failed to load wishlist"))
	}
	if len(items) == 0 {
		fmt.Println("wishlist is empty")
		return nil
	}
	for _, item := range items {
		fmt.Printf("%4d  %-40s %8.2f\n", item.Product.ID, item.Product.Title, item.Product.FinalPrice)
	}
	return nil
}

func (a *app) cmdWishlistToggle(c *cli.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	productID, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return errors.Wrap(err, "product id must be a number")
	}
	result, err := a.client.ToggleWishlist(c.Context, productID)
	if err != nil {
		return errors.New(userMessage(err, "failed to toggle wishlist"))
	}
	if result.Message != "" {
		fmt.Println(result.Message)
	} else if result.Added {
		fmt.Println("added to wishlist")
	} else {
		fmt.Println("removed from wishlist")
	}
	return nil
}

func (a *app) cmdPayStatus(c *cli.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	paymentID := c.Args().First()
	if paymentID == "" {
		return errors.New("payment id is required")
	}
	status, err := a.client.PaymentStatus(c.Context, paymentID)
	if err != nil {
		return errors.New(userMessage(err, "failed to load payment status"))
	}
	fmt.Printf("payment %s: %s", status.PaymentID, status.Status)
	if status.OrderID != "" {
		fmt.Printf(" (order %s)", status.OrderID)
	}
	fmt.Println()
	return nil
}

// cmdConfirm forwards callback parameters by hand, for when the return
// redirect landed somewhere a browser could not reach shopfrontd.
func (a *app) cmdConfirm(c *cli.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	params := pkg.GatewayCallback{
		PaymentID:   c.String("payment-id"),
		TranID:      c.String("tran-id"),
		ValID:       c.String("val-id"),
		Amount:      c.String("amount"),
		CardType:    c.String("card-type"),
		BankTranID:  c.String("bank-tran-id"),
		CardNo:      c.String("card-no"),
		CardIssuer:  c.String("card-issuer"),
		CardBrand:   c.String("card-brand"),
		StoreAmount: c.String("store-amount"),
	}
	return a.confirm(c, params)
}

// cmdTestPay synthesizes the staging-gateway parameters and feeds the same
// confirmation contract the real gateway does.
func (a *app) cmdTestPay(c *cli.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	params := pkg.SynthesizeTestCallback(c.String("payment-id"), c.String("amount"))
	return a.confirm(c, params)
}

func (a *app) confirm(c *cli.Context, params pkg.GatewayCallback) error {
	resp, err := a.service.Step3ConfirmPayment(c.Context, pkg.ConfirmPaymentRequest{Params: params})
	if err != nil {
		if resp.Message != "" {
			return errors.New(resp.Message)
		}
		return errors.New("payment confirmation failed, order remains pending")
	}
	switch resp.Status {
	case pkg.CheckoutStatusAlreadyCompleted:
		fmt.Println("order was already completed, nothing to do")
	default:
		fmt.Printf("payment confirmed, order %s is completed\n", resp.OrderID)
	}
	return nil
}

func run() error {
	err := godotenv.Load()
	if err != nil {
		log.WithError(err).Debug("error loading .env, ignoring")
	}
	var conf config
	err = envconfig.Process("shopfront", &conf)
	if err != nil {
		eMsg := "error reading configuration from environment"
		log.WithError(err).Error(eMsg)
		return errors.Wrap(err, eMsg)
	}
	tokenFile := conf.TokenFile
	if tokenFile == "" {
		tokenFile = session.DefaultPath()
	}
	store := session.NewFileStore(tokenFile)
	client := pkg.NewClient(conf.APIBaseUrl, time.Duration(conf.TimeoutSeconds)*time.Second, store)
	a := &app{
		conf:    conf,
		store:   store,
		client:  client,
		service: pkg.NewService(client),
		reader:  bufio.NewReader(os.Stdin),
	}

	filterFlags := []cli.Flag{
		&cli.StringFlag{Name: "category"},
		&cli.StringFlag{Name: "search"},
		&cli.Float64Flag{Name: "min-price"},
		&cli.Float64Flag{Name: "max-price"},
		&cli.IntFlag{Name: "page"},
	}
	callbackFlags := []cli.Flag{
		&cli.StringFlag{Name: "payment-id"},
		&cli.StringFlag{Name: "tran-id", Required: true},
		&cli.StringFlag{Name: "val-id", Required: true},
		&cli.StringFlag{Name: "amount"},
		&cli.StringFlag{Name: "card-type"},
		&cli.StringFlag{Name: "bank-tran-id"},
		&cli.StringFlag{Name: "card-no"},
		&cli.StringFlag{Name: "card-issuer"},
		&cli.StringFlag{Name: "card-brand"},
		&cli.StringFlag{Name: "store-amount"},
	}

	cliApp := &cli.App{
		Name:  "shopfront-cli",
		Usage: "storefront client for the marketplace API",
		Commands: []*cli.Command{
			{
				Name: "register",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username"},
					&cli.StringFlag{Name: "email"},
					&cli.StringFlag{Name: "password"},
					&cli.StringFlag{Name: "first-name"},
					&cli.StringFlag{Name: "last-name"},
				},
				Action: a.cmdRegister,
			},
			{Name: "login", ArgsUsage: "[username] [password]", Action: a.cmdLogin},
			{Name: "logout", Action: a.cmdLogout},
			{Name: "profile", Action: a.cmdProfile},
			{Name: "categories", Action: a.cmdCategories},
			{Name: "products", Flags: filterFlags, Action: a.cmdProducts},
			{Name: "featured", Action: a.cmdFeatured},
			{Name: "product", ArgsUsage: "<slug>", Action: a.cmdProduct},
			{Name: "search", ArgsUsage: "<query>", Flags: filterFlags, Action: a.cmdSearch},
			{
				Name:   "cart",
				Action: a.cmdCartShow,
				Subcommands: []*cli.Command{
					{Name: "show", Action: a.cmdCartShow},
					{Name: "add", ArgsUsage: "<product_id>", Action: a.cmdCartAdd},
					{Name: "remove", ArgsUsage: "<item_id>", Action: a.cmdCartRemove},
					{Name: "clear", Action: a.cmdCartClear},
				},
			},
			{Name: "orders", Action: a.cmdOrders},
			{Name: "order", ArgsUsage: "<order_id>", Action: a.cmdOrder},
			{
				Name:      "checkout",
				ArgsUsage: "[order_id]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "phone"},
					&cli.StringFlag{Name: "address"},
					&cli.StringFlag{Name: "city", Value: "Dhaka"},
					&cli.StringFlag{Name: "postcode", Value: "1000"},
				},
				Action: a.cmdCheckout,
			},
			{Name: "download", ArgsUsage: "<order_id> <order_item_id>", Action: a.cmdDownload},
			{Name: "reviews", ArgsUsage: "<product_id>", Action: a.cmdReviews},
			{
				Name:      "review",
				ArgsUsage: "<product_id>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "rating", Required: true},
					&cli.StringFlag{Name: "comment"},
				},
				Action: a.cmdReview,
			},
			{
				Name:   "wishlist",
				Action: a.cmdWishlist,
				Subcommands: []*cli.Command{
					{Name: "toggle", ArgsUsage: "<product_id>", Action: a.cmdWishlistToggle},
				},
			},
			{Name: "pay-status", ArgsUsage: "<payment_id>", Action: a.cmdPayStatus},
			{Name: "confirm", Flags: callbackFlags, Action: a.cmdConfirm},
			{
				Name: "test-pay",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "payment-id", Required: true},
					&cli.StringFlag{Name: "amount"},
				},
				Action: a.cmdTestPay,
			},
		},
	}
	return cliApp.Run(os.Args)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
